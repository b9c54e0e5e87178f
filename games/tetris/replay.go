package tetris

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// ErrReplayMismatch is returned when a replayed playthrough does not end the
// way it was recorded.
var ErrReplayMismatch = errors.New("replay does not match recording")

// Input is one command and the frame it arrived on.
type Input struct {
	Frame   uint64  `json:"frame" yaml:"frame"`
	Command Command `json:"command" yaml:"command"`
}

// Journal collects the inputs a session receives.
type Journal struct {
	Inputs []Input
}

func (j *Journal) add(frame uint64, c Command) {
	j.Inputs = append(j.Inputs, Input{Frame: frame, Command: c})
}

// RulesRecord is the serialized form of Rules.
type RulesRecord struct {
	Rows        int    `json:"rows" yaml:"rows"`
	Cols        int    `json:"cols" yaml:"cols"`
	BaseMillis  int64  `json:"base_ms" yaml:"base_ms"`
	MinMillis   int64  `json:"min_ms" yaml:"min_ms"`
	StepMillis  int64  `json:"step_ms" yaml:"step_ms"`
	LockPolicy  string `json:"lock_policy" yaml:"lock_policy"`
	DelayMillis int64  `json:"lock_delay_ms" yaml:"lock_delay_ms"`
	SpawnRow    int    `json:"spawn_row" yaml:"spawn_row"`
}

// RecordRules converts r for storage.
func RecordRules(r Rules) RulesRecord {
	return RulesRecord{
		Rows:        r.Rows,
		Cols:        r.Cols,
		BaseMillis:  r.BaseInterval.Milliseconds(),
		MinMillis:   r.MinInterval.Milliseconds(),
		StepMillis:  r.IntervalStep.Milliseconds(),
		LockPolicy:  r.LockPolicy.String(),
		DelayMillis: r.LockDelay.Milliseconds(),
		SpawnRow:    r.SpawnRow,
	}
}

// Rules converts the record back.
func (rr RulesRecord) Rules() (Rules, error) {
	policy, err := ParseLockPolicy(rr.LockPolicy)
	if err != nil {
		return Rules{}, err
	}
	if rr.Rows <= 0 || rr.Cols < 4 {
		return Rules{}, fmt.Errorf("invalid board %dx%d", rr.Rows, rr.Cols)
	}
	return Rules{
		Rows:         rr.Rows,
		Cols:         rr.Cols,
		BaseInterval: time.Duration(rr.BaseMillis) * time.Millisecond,
		MinInterval:  time.Duration(rr.MinMillis) * time.Millisecond,
		IntervalStep: time.Duration(rr.StepMillis) * time.Millisecond,
		LockPolicy:   policy,
		LockDelay:    time.Duration(rr.DelayMillis) * time.Millisecond,
		SpawnRow:     rr.SpawnRow,
	}, nil
}

// Playthrough is everything needed to replay a finished game: the rules, the
// seed, the fixed tick rate and the input journal, plus the final counters
// used to check the replay.
type Playthrough struct {
	ID        string      `json:"id" yaml:"id"`
	UserID    int         `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Variant   string      `json:"variant" yaml:"variant"`
	Seed      int64       `json:"seed" yaml:"seed"`
	TickRate  int         `json:"tick_rate" yaml:"tick_rate"`
	Rules     RulesRecord `json:"rules" yaml:"rules"`
	Inputs    []Input     `json:"inputs" yaml:"inputs"`
	Frames    uint64      `json:"frames" yaml:"frames"`
	Score     int         `json:"score" yaml:"score"`
	Lines     int         `json:"lines" yaml:"lines"`
	Level     int         `json:"level" yaml:"level"`
	Reason    string      `json:"reason" yaml:"reason"`
	StartedAt time.Time   `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time   `json:"ended_at" yaml:"ended_at"`

	journal Journal
}

// NewPlaythrough starts recording s, which must be driven at tickRate fixed
// steps per second.
func NewPlaythrough(s *Session, variant string, tickRate int) *Playthrough {
	p := &Playthrough{
		ID:        uuid.NewString(),
		Variant:   variant,
		Seed:      s.Seed(),
		TickRate:  tickRate,
		Rules:     RecordRules(s.Rules()),
		StartedAt: time.Now().UTC(),
	}
	s.Record(&p.journal)
	return p
}

// Step is the fixed tick duration of the recording.
func (p *Playthrough) Step() time.Duration {
	if p.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(p.TickRate)
}

// Finish copies the journal and final counters out of s.
func (p *Playthrough) Finish(s *Session) {
	p.Inputs = append([]Input(nil), p.journal.Inputs...)
	p.Frames = s.Frame()
	p.Score = s.Score()
	p.Lines = s.Lines()
	p.Level = s.Level()
	p.Reason = s.EndReason().String()
	p.EndedAt = time.Now().UTC()
}

// Replay re-drives a fresh session through the recorded inputs.
func Replay(p *Playthrough) (*Session, error) {
	step := p.Step()
	if step <= 0 {
		return nil, fmt.Errorf("invalid tick rate %d", p.TickRate)
	}
	rules, err := p.Rules.Rules()
	if err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	s := NewSession(rules, p.Seed)
	for i, in := range p.Inputs {
		if err := advanceTo(s, in.Frame, step); err != nil {
			return nil, fmt.Errorf("input %d (%s): %w", i, in.Command, err)
		}
		s.Apply(in.Command)
	}
	if err := advanceTo(s, p.Frames, step); err != nil {
		return nil, fmt.Errorf("final frame: %w", err)
	}
	return s, nil
}

func advanceTo(s *Session, frame uint64, step time.Duration) error {
	for s.Frame() < frame {
		before := s.Frame()
		s.Tick(step)
		if s.Frame() == before {
			return fmt.Errorf("%w: session stopped at frame %d, expected %d", ErrReplayMismatch, before, frame)
		}
	}
	if s.Frame() > frame {
		return fmt.Errorf("%w: session at frame %d, expected %d", ErrReplayMismatch, s.Frame(), frame)
	}
	return nil
}

// Verify replays p and checks it ends with the recorded counters.
func (p *Playthrough) Verify() error {
	s, err := Replay(p)
	if err != nil {
		return err
	}
	if s.Score() != p.Score || s.Lines() != p.Lines || s.Level() != p.Level {
		return fmt.Errorf("%w: got score=%d lines=%d level=%d, recorded score=%d lines=%d level=%d",
			ErrReplayMismatch, s.Score(), s.Lines(), s.Level(), p.Score, p.Lines, p.Level)
	}
	return nil
}

// MarshalPlaythroughYAML encodes p for export.
func MarshalPlaythroughYAML(p *Playthrough) ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playthrough: %w", err)
	}
	return data, nil
}

// UnmarshalPlaythroughYAML decodes an exported playthrough.
func UnmarshalPlaythroughYAML(data []byte) (*Playthrough, error) {
	var p Playthrough
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playthrough: %w", err)
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, fmt.Errorf("invalid playthrough id %q: %w", p.ID, err)
	}
	return &p, nil
}
