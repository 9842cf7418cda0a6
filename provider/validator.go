package provider

import "strings"

/*
Validator decides whether a provider payload looks like a media result. It is a presence
test over a vocabulary of known response shapes, not a schema: passing it does not
guarantee a playable link.

An object passes when any key in Keys holds a non-empty value, when "success" is true, or
when "status" is one of SuccessStatuses. A non-empty array passes. A string passes when it
contains any of StringMarkers.
*/
type Validator struct {
	Keys            map[string]bool
	SuccessStatuses map[string]bool
	StringMarkers   []string
}

func DefaultValidator() Validator {
	return Validator{
		Keys: setOf(
			"video_url", "download_url", "url", "data", "result", "media", "medias",
			"download", "links", "formats", "aweme_list", "play", "hdplay",
		),
		SuccessStatuses: setOf("success", "stream", "redirect", "tunnel", "picker"),
		StringMarkers:   []string{"download", "http"},
	}
}

func (v Validator) Valid(payload any) bool {
	switch p := payload.(type) {
	case map[string]any:
		return v.validObject(p)
	case []any:
		return len(p) > 0
	case string:
		for _, marker := range v.StringMarkers {
			if strings.Contains(p, marker) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (v Validator) validObject(obj map[string]any) bool {
	if success, ok := obj["success"].(bool); ok && success {
		return true
	}
	if status, ok := obj["status"].(string); ok && v.SuccessStatuses[strings.ToLower(status)] {
		return true
	}
	for key, value := range obj {
		if v.Keys[key] && present(value) {
			return true
		}
	}
	return false
}

// present treats nil, false, zero and "" as absent. Empty containers count as present.
func present(value any) bool {
	switch val := value.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	default:
		return true
	}
}

func setOf(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
