package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Command type tags.
const (
	TypeSetInstancePowerControl        = "setInstancePowerControl"
	TypeSetInstancePlayControl         = "setInstancePlayControl"
	TypeSetInstanceParameters          = "setInstanceParameters"
	TypeSubscribeToInstanceReports     = "subscribeToInstanceReports"
	TypeUnsubscribeFromInstanceReports = "unsubscribeFromInstanceReports"
)

// Event type tags.
const (
	TypeSetInstancePowerControlResponse = "setInstancePowerControlResponse"
	TypeInstanceReport                  = "instanceReport"
)

// Command is one of the five control commands.
type Command interface {
	CommandType() string
	validate() error
}

// Event is one of the two control events.
type Event interface {
	EventType() string
	validate() error
}

type SetInstancePowerControl struct {
	InstanceID string       `json:"instanceId"`
	Desired    DesiredPower `json:"desired"`
}

type SetInstancePlayControl struct {
	InstanceID string      `json:"instanceId"`
	Desired    PlayDesired `json:"desired"`
}

type SetInstanceParameters struct {
	InstanceID string         `json:"instanceId"`
	Parameters map[string]any `json:"parameters"`
}

type SubscribeToInstanceReports struct {
	InstanceID string `json:"instanceId"`
}

type UnsubscribeFromInstanceReports struct {
	InstanceID string `json:"instanceId"`
}

// SetInstancePowerControlResponse answers a SetInstancePowerControl request.
type SetInstancePowerControlResponse struct {
	RequestID  string `json:"requestId"`
	InstanceID string `json:"instanceId"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

// InstanceReport is streamed to subscribers of an instance.
type InstanceReport struct {
	InstanceID string         `json:"instanceId"`
	Power      PowerReport    `json:"power"`
	Play       *PlayReport    `json:"play,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (SetInstancePowerControl) CommandType() string        { return TypeSetInstancePowerControl }
func (SetInstancePlayControl) CommandType() string         { return TypeSetInstancePlayControl }
func (SetInstanceParameters) CommandType() string          { return TypeSetInstanceParameters }
func (SubscribeToInstanceReports) CommandType() string     { return TypeSubscribeToInstanceReports }
func (UnsubscribeFromInstanceReports) CommandType() string { return TypeUnsubscribeFromInstanceReports }

func (SetInstancePowerControlResponse) EventType() string { return TypeSetInstancePowerControlResponse }
func (InstanceReport) EventType() string                  { return TypeInstanceReport }

func requireInstance(id string) error {
	if strings.TrimSpace(id) == "" {
		return &DecodeError{Kind: DecodeInvalid, Field: "instanceId", Cause: errors.New("is required")}
	}
	return nil
}

func (c SetInstancePowerControl) validate() error {
	if err := requireInstance(c.InstanceID); err != nil {
		return err
	}
	if !c.Desired.Valid() {
		return &DecodeError{Kind: DecodeInvalid, Field: "desired", Cause: fmt.Errorf("%q is not on or off", c.Desired)}
	}
	return nil
}

func (c SetInstancePlayControl) validate() error { return requireInstance(c.InstanceID) }

// UnmarshalJSON requires desired to be present; a missing value must not
// read as stop.
func (c *SetInstancePlayControl) UnmarshalJSON(data []byte) error {
	var w struct {
		InstanceID string       `json:"instanceId"`
		Desired    *PlayDesired `json:"desired"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Desired == nil {
		return &DecodeError{Kind: DecodeInvalid, Field: "desired", Cause: errors.New("is required")}
	}
	*c = SetInstancePlayControl{InstanceID: w.InstanceID, Desired: *w.Desired}
	return nil
}

func (c SetInstanceParameters) validate() error {
	if err := requireInstance(c.InstanceID); err != nil {
		return err
	}
	if c.Parameters == nil {
		return &DecodeError{Kind: DecodeInvalid, Field: "parameters", Cause: errors.New("is required")}
	}
	return nil
}

func (c SubscribeToInstanceReports) validate() error     { return requireInstance(c.InstanceID) }
func (c UnsubscribeFromInstanceReports) validate() error { return requireInstance(c.InstanceID) }

func (e SetInstancePowerControlResponse) validate() error {
	if e.RequestID == "" {
		return &DecodeError{Kind: DecodeInvalid, Field: "requestId", Cause: errors.New("is required")}
	}
	return requireInstance(e.InstanceID)
}

// UnmarshalJSON requires success to be present; a missing value must not
// read as a refusal.
func (e *SetInstancePowerControlResponse) UnmarshalJSON(data []byte) error {
	var w struct {
		RequestID  string `json:"requestId"`
		InstanceID string `json:"instanceId"`
		Success    *bool  `json:"success"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Success == nil {
		return &DecodeError{Kind: DecodeInvalid, Field: "success", Cause: errors.New("is required")}
	}
	*e = SetInstancePowerControlResponse{RequestID: w.RequestID, InstanceID: w.InstanceID, Success: *w.Success, Message: w.Message}
	return nil
}

func (e InstanceReport) validate() error {
	if err := requireInstance(e.InstanceID); err != nil {
		return err
	}
	if e.Play != nil && !e.Play.Current.Valid() {
		return &DecodeError{Kind: DecodeInvalid, Field: "play.current", Cause: fmt.Errorf("unknown play state %q", e.Play.Current)}
	}
	if !e.Power.Current.Valid() {
		return &DecodeError{Kind: DecodeInvalid, Field: "power.current", Cause: fmt.Errorf("unknown power state %q", e.Power.Current)}
	}
	if !e.Power.Desired.Valid() {
		return &DecodeError{Kind: DecodeInvalid, Field: "power.desired", Cause: fmt.Errorf("%q is not on or off", e.Power.Desired)}
	}
	return nil
}

// tagged writes v with a leading "type" member.
func tagged(tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+len(head)+10)
	out = append(out, `{"type":`...)
	out = append(out, head...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

// MarshalCommand validates cmd and encodes it with its type tag.
func MarshalCommand(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, errors.New("protocol: nil command")
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	return tagged(cmd.CommandType(), cmd)
}

// MarshalEvent validates ev and encodes it with its type tag.
func MarshalEvent(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, errors.New("protocol: nil event")
	}
	if err := ev.validate(); err != nil {
		return nil, err
	}
	return tagged(ev.EventType(), ev)
}

type envelope struct {
	Type *string `json:"type"`
}

func readTag(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", &DecodeError{Kind: DecodeMalformed, Cause: err}
	}
	if env.Type == nil || *env.Type == "" {
		return "", &DecodeError{Kind: DecodeMissingType}
	}
	return *env.Type, nil
}

func decodeInto[T interface{ validate() error }](tag string, data []byte) (T, error) {
	var v, zero T
	err := json.Unmarshal(data, &v)
	if err == nil {
		err = v.validate()
	}
	if err != nil {
		var de *DecodeError
		if !errors.As(err, &de) {
			de = &DecodeError{Kind: DecodeInvalid, Cause: err}
		}
		de.Type = tag
		return zero, de
	}
	return v, nil
}

// DecodeCommand checks data against the command shapes and returns the
// decoded variant or a *DecodeError.
func DecodeCommand(data []byte) (Command, error) {
	tag, err := readTag(data)
	if err != nil {
		return nil, err
	}
	var cmd Command
	switch tag {
	case TypeSetInstancePowerControl:
		cmd, err = decodeInto[SetInstancePowerControl](tag, data)
	case TypeSetInstancePlayControl:
		cmd, err = decodeInto[SetInstancePlayControl](tag, data)
	case TypeSetInstanceParameters:
		cmd, err = decodeInto[SetInstanceParameters](tag, data)
	case TypeSubscribeToInstanceReports:
		cmd, err = decodeInto[SubscribeToInstanceReports](tag, data)
	case TypeUnsubscribeFromInstanceReports:
		cmd, err = decodeInto[UnsubscribeFromInstanceReports](tag, data)
	default:
		return nil, &DecodeError{Kind: DecodeUnknownType, Type: tag}
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// DecodeEvent is DecodeCommand for events.
func DecodeEvent(data []byte) (Event, error) {
	tag, err := readTag(data)
	if err != nil {
		return nil, err
	}
	var ev Event
	switch tag {
	case TypeSetInstancePowerControlResponse:
		ev, err = decodeInto[SetInstancePowerControlResponse](tag, data)
	case TypeInstanceReport:
		ev, err = decodeInto[InstanceReport](tag, data)
	default:
		return nil, &DecodeError{Kind: DecodeUnknownType, Type: tag}
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// WsRequest wraps a command with an id the peer echoes in its response.
// Matching responses to requests is left to the caller.
type WsRequest struct {
	RequestID string
	Command   Command
}

// NewRequest wraps cmd under a fresh random request id.
func NewRequest(cmd Command) WsRequest {
	return WsRequest{RequestID: uuid.NewString(), Command: cmd}
}

type wsRequestWire struct {
	RequestID string          `json:"requestId"`
	Command   json.RawMessage `json:"command"`
}

func (r WsRequest) MarshalJSON() ([]byte, error) {
	if r.RequestID == "" {
		return nil, &DecodeError{Kind: DecodeInvalid, Field: "requestId", Cause: errors.New("is required")}
	}
	cmd, err := MarshalCommand(r.Command)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wsRequestWire{RequestID: r.RequestID, Command: cmd})
}

func (r *WsRequest) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeRequest(data)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// DecodeRequest decodes a WsRequest and its command.
func DecodeRequest(data []byte) (WsRequest, error) {
	var w wsRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return WsRequest{}, &DecodeError{Kind: DecodeMalformed, Cause: err}
	}
	if w.RequestID == "" {
		return WsRequest{}, &DecodeError{Kind: DecodeInvalid, Field: "requestId", Cause: errors.New("is required")}
	}
	if len(w.Command) == 0 {
		return WsRequest{}, &DecodeError{Kind: DecodeInvalid, Field: "command", Cause: errors.New("is required")}
	}
	cmd, err := DecodeCommand(w.Command)
	if err != nil {
		return WsRequest{}, err
	}
	return WsRequest{RequestID: w.RequestID, Command: cmd}, nil
}
