package language

import "strings"

// DecodeText turns raw file bytes into text the way a lenient text-mode reader
// would: invalid UTF-8 sequences are dropped and CRLF / CR line endings become LF.
func DecodeText(data []byte) string {
	text := strings.ToValidUTF8(string(data), "")
	if strings.IndexByte(text, '\r') < 0 {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
