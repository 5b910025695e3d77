// Package protocol defines the control-channel messages used to drive and
// observe instance power and play state over a WebSocket connection.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// PowerState is the observed power state of an instance.
type PowerState string

const (
	PowerOn          PowerState = "on"
	PowerOff         PowerState = "off"
	PowerCoolingDown PowerState = "coolingDown"
	PowerWarmingUp   PowerState = "warmingUp"
)

// Valid reports whether s is a known power state.
func (s PowerState) Valid() bool {
	switch s {
	case PowerOn, PowerOff, PowerCoolingDown, PowerWarmingUp:
		return true
	}
	return false
}

// DesiredPower is the power state a client asks for.
type DesiredPower string

const (
	DesiredOn  DesiredPower = "on"
	DesiredOff DesiredPower = "off"
)

// Valid reports whether d is on or off.
func (d DesiredPower) Valid() bool {
	return d == DesiredOn || d == DesiredOff
}

const (
	playStop    = "stop"
	playTypeTag = "play"
)

// Play asks an instance to play for Duration seconds under PlayID.
type Play struct {
	Duration float64
	PlayID   int64
}

// PlayDesired is either the literal "stop" or a Play.
type PlayDesired struct {
	play *Play
}

// Stop returns the stop variant.
func Stop() PlayDesired { return PlayDesired{} }

// PlayFor returns the play variant.
func PlayFor(duration float64, playID int64) PlayDesired {
	return PlayDesired{play: &Play{Duration: duration, PlayID: playID}}
}

// IsStop reports whether d is the stop variant.
func (d PlayDesired) IsStop() bool { return d.play == nil }

// Play returns the play variant.
func (d PlayDesired) Play() (Play, bool) {
	if d.play == nil {
		return Play{}, false
	}
	return *d.play, true
}

func (d PlayDesired) String() string {
	if d.play == nil {
		return playStop
	}
	return fmt.Sprintf("play(duration=%g, playId=%d)", d.play.Duration, d.play.PlayID)
}

type playWire struct {
	Type     string          `json:"type"`
	Duration json.RawMessage `json:"duration"`
	PlayID   json.RawMessage `json:"playId"`
}

func (d PlayDesired) MarshalJSON() ([]byte, error) {
	if d.play == nil {
		return json.Marshal(playStop)
	}
	if err := d.play.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(playWire{
		Type:     playTypeTag,
		Duration: json.RawMessage(strconv.FormatFloat(d.play.Duration, 'g', -1, 64)),
		PlayID:   json.RawMessage(strconv.FormatInt(d.play.PlayID, 10)),
	})
}

func (d *PlayDesired) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != playStop {
			return fmt.Errorf("desired play %q: expected %q or a play object", s, playStop)
		}
		*d = Stop()
		return nil
	}

	var w playWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("desired play: %w", err)
	}
	if w.Type != playTypeTag {
		return fmt.Errorf("desired play: type %q, expected %q", w.Type, playTypeTag)
	}
	duration, err := numberLiteral("duration", w.Duration)
	if err != nil {
		return err
	}
	playID, err := integerLiteral("playId", w.PlayID)
	if err != nil {
		return err
	}
	p := Play{Duration: duration, PlayID: playID}
	if err := p.validate(); err != nil {
		return err
	}
	*d = PlayDesired{play: &p}
	return nil
}

// numberLiteral parses raw as a bare JSON number. Strings, null and
// other types are rejected even when they hold numeric text.
func numberLiteral(field string, raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("desired play: %s is required", field)
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, fmt.Errorf("desired play: %s must be a number, got %s", field, raw)
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("desired play: %s: %w", field, err)
	}
	return f, nil
}

func integerLiteral(field string, raw json.RawMessage) (int64, error) {
	f, err := numberLiteral(field, raw)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64); err == nil {
		return n, nil
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("desired play: %s %s is not an integer", field, bytes.TrimSpace(raw))
	}
	return int64(f), nil
}

func (p Play) validate() error {
	if math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0) || p.Duration < 0 {
		return fmt.Errorf("desired play: duration %v must be a non-negative number", p.Duration)
	}
	return nil
}

// PowerReport pairs the observed power state with the requested one.
type PowerReport struct {
	Current PowerState   `json:"current"`
	Desired DesiredPower `json:"desired"`
}

// PlayState is the observed play state of an instance.
type PlayState string

const (
	PlayPlaying PlayState = "playing"
	PlayStopped PlayState = "stopped"
)

// Valid reports whether s is a known play state.
func (s PlayState) Valid() bool {
	return s == PlayPlaying || s == PlayStopped
}

// PlayReport pairs the observed play state with the requested one.
type PlayReport struct {
	Current PlayState   `json:"current"`
	Desired PlayDesired `json:"desired"`
}

// UnmarshalJSON requires desired to be present; a missing value must not
// read as stop.
func (r *PlayReport) UnmarshalJSON(data []byte) error {
	var w struct {
		Current PlayState    `json:"current"`
		Desired *PlayDesired `json:"desired"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Desired == nil {
		return &DecodeError{Kind: DecodeInvalid, Field: "play.desired", Cause: errors.New("is required")}
	}
	*r = PlayReport{Current: w.Current, Desired: *w.Desired}
	return nil
}
