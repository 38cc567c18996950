package service

import "strings"

// Callback actions carried in button data. Telegram caps callback data at
// 64 bytes, so verbs stay single characters next to the ticket id.
const (
	ActionAccept = "a"
	ActionReject = "r"
	ActionSelect = "s"
	ActionClose  = "c"
	ActionNote   = "n"
	ActionPage   = "p"
	ActionDetail = "d"
)

const callbackPrefix = "tk"

// EncodeCallback packs an action and its arguments into button data.
func EncodeCallback(action string, args ...string) string {
	parts := append([]string{callbackPrefix, action}, args...)
	return strings.Join(parts, "|")
}

// DecodeCallback unpacks button data produced by EncodeCallback.
func DecodeCallback(data string) (string, []string, bool) {
	parts := strings.Split(data, "|")
	if len(parts) < 2 || parts[0] != callbackPrefix {
		return "", nil, false
	}
	return parts[1], parts[2:], true
}
