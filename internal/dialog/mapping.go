package dialog

import (
	"fmt"

	"telegram-dialog-state/internal/domain"
	"telegram-dialog-state/internal/domain/model"
)

// Every persisted field is an explicit entry in these converters; the
// mapping is the storage contract, not a reflection of struct layout.
// From-map helpers tolerate the numeric widening JSON codecs apply
// (int64 -> float64) since both storage backends round-trip through
// JSON documents.

func contextToMap(c *model.Context) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"stack_id":    c.StackID,
		"state":       c.State.ID(),
		"start_data":  c.StartData,
		"dialog_data": c.DialogData,
		"widget_data": c.WidgetData,
	}
}

func (p *StorageProxy) contextFromMap(data map[string]any) (*model.Context, error) {
	state, err := p.resolveState(stringField(data, "state"))
	if err != nil {
		return nil, err
	}
	return &model.Context{
		ID:         stringField(data, "id"),
		StackID:    stringField(data, "stack_id"),
		State:      state,
		StartData:  mapField(data, "start_data"),
		DialogData: mapField(data, "dialog_data"),
		WidgetData: mapField(data, "widget_data"),
	}, nil
}

func stackToMap(s *model.Stack) map[string]any {
	return map[string]any{
		"id":                   s.ID,
		"intents":              s.Intents,
		"last_message_id":      int64PtrValue(s.LastMessageID),
		"last_media_id":        stringPtrValue(s.LastMediaID),
		"last_media_unique_id": stringPtrValue(s.LastMediaUniqueID),
		"last_reply_keyboard":  s.LastReplyKeyboard,
		"access_settings":      dumpAccessSettings(s.AccessSettings),
	}
}

func stackFromMap(data map[string]any) (*model.Stack, error) {
	settings, err := parseAccessSettings(data["access_settings"])
	if err != nil {
		return nil, err
	}
	return &model.Stack{
		ID:                stringField(data, "id"),
		Intents:           stringSliceField(data, "intents"),
		LastMessageID:     int64PtrField(data, "last_message_id"),
		LastMediaID:       stringPtrField(data, "last_media_id"),
		LastMediaUniqueID: stringPtrField(data, "last_media_unique_id"),
		LastReplyKeyboard: boolField(data, "last_reply_keyboard"),
		AccessSettings:    settings,
	}, nil
}

// dumpAccessSettings emits exactly user_ids, member_status and custom.
// Absent settings dump to nil, the explicit "no settings" marker.
func dumpAccessSettings(s *model.AccessSettings) any {
	if s == nil {
		return nil
	}
	var status any
	if s.MemberStatus != nil {
		status = *s.MemberStatus
	}
	return map[string]any{
		"user_ids":      s.UserIDs,
		"member_status": status,
		"custom":        s.Custom,
	}
}

// parseAccessSettings treats a missing, nil, or empty raw value as
// "no settings". A present member_status must decode to a known
// status; that failure propagates.
func parseAccessSettings(raw any) (*model.AccessSettings, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed access settings of type %T: %w", raw, domain.ErrInvalidArgument)
	}
	if len(m) == 0 {
		return nil, nil
	}
	settings := &model.AccessSettings{
		UserIDs: int64SliceField(m, "user_ids"),
		Custom:  m["custom"],
	}
	if settings.UserIDs == nil {
		settings.UserIDs = []int64{}
	}
	if rawStatus := stringField(m, "member_status"); rawStatus != "" {
		status, err := model.ParseMemberStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		settings.MemberStatus = &status
	}
	return settings, nil
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case model.MemberStatus:
		return string(v)
	}
	return ""
}

func boolField(data map[string]any, key string) bool {
	v, _ := data[key].(bool)
	return v
}

func stringPtrField(data map[string]any, key string) *string {
	if v, ok := data[key].(string); ok {
		return &v
	}
	return nil
}

func int64PtrField(data map[string]any, key string) *int64 {
	if n, ok := asInt64(data[key]); ok {
		return &n
	}
	return nil
}

func mapField(data map[string]any, key string) map[string]any {
	v, _ := data[key].(map[string]any)
	return v
}

func stringSliceField(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func int64SliceField(data map[string]any, key string) []int64 {
	switch v := data[key].(type) {
	case []int64:
		return v
	case []any:
		out := make([]int64, 0, len(v))
		for _, item := range v {
			if n, ok := asInt64(item); ok {
				out = append(out, n)
			}
		}
		return out
	}
	return nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func int64PtrValue(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtrValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
