package monitor

import (
	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Event types
const (
	TypeProfileBound    = `profile_bound`
	TypeProfileReleased = `profile_released`
	TypeWriteFailed     = `write_failed`
	TypeNotification    = `notification`
	TypeBeat            = `beat`
	TypeFeatures        = `features`
	TypeProbeStep       = `probe_step`
)

// CharacteristicPayload identifies a characteristic
type CharacteristicPayload struct {
	ID   string `json:"id"`
	UUID string `json:"uuid"`
}

func characteristic(c common.Characteristic) CharacteristicPayload {
	return CharacteristicPayload{ID: c.ID, UUID: c.UUID.String()}
}

// ProfileBoundPayload accompanies TypeProfileBound
type ProfileBoundPayload struct {
	Format         string                `json:"format"`
	Characteristic CharacteristicPayload `json:"characteristic"`
	Acknowledged   bool                  `json:"acknowledged"`
}

// WriteFailedPayload accompanies TypeWriteFailed
type WriteFailedPayload struct {
	Characteristic CharacteristicPayload `json:"characteristic"`
	Payload        string                `json:"payload"`
	Error          string                `json:"error"`
}

// NotificationPayload accompanies TypeNotification
type NotificationPayload struct {
	Characteristic CharacteristicPayload `json:"characteristic"`
	Data           string                `json:"data"`
	Hint           string                `json:"hint"`
}

// ProbeStepPayload accompanies TypeProbeStep
type ProbeStepPayload struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
	Payload string `json:"payload"`
	Error   string `json:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ``
	}
	return err.Error()
}

// Translate converts a subscription event into its websocket form
func Translate(raw interface{}) (Event, bool) {
	switch e := raw.(type) {
	case common.EventProfileBound:
		return Event{Type: TypeProfileBound, Payload: ProfileBoundPayload{
			Format:         e.Format,
			Characteristic: characteristic(e.Characteristic),
			Acknowledged:   e.Acknowledged,
		}}, true
	case common.EventProfileReleased:
		return Event{Type: TypeProfileReleased, Payload: map[string]string{`format`: e.Format}}, true
	case common.EventWriteFailed:
		return Event{Type: TypeWriteFailed, Payload: WriteFailedPayload{
			Characteristic: characteristic(e.Characteristic),
			Payload:        common.HexString(e.Payload),
			Error:          errString(e.Err),
		}}, true
	case common.EventNotification:
		return Event{Type: TypeNotification, Payload: NotificationPayload{
			Characteristic: characteristic(e.Notification.Characteristic),
			Data:           common.HexString(e.Notification.Data),
			Hint:           e.Hint,
		}}, true
	case common.EventBeat:
		return Event{Type: TypeBeat, Payload: e.Beat}, true
	case common.EventFeatures:
		return Event{Type: TypeFeatures, Payload: e.Features}, true
	case common.EventProbeStep:
		return Event{Type: TypeProbeStep, Payload: ProbeStepPayload{
			Index:   e.Index,
			Total:   e.Total,
			Label:   e.Label,
			Payload: common.HexString(e.Payload),
			Error:   errString(e.Err),
		}}, true
	}
	return Event{}, false
}
