package identity

import "strconv"

func formatInt(id int64) string { return strconv.FormatInt(id, 10) }

func parseInt(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

// FormatID renders a user ID the same way tokens encode it in their
// subject claim, for callers outside this package that need a string
// key (e.g. rate-limit bucket keys).
func FormatID(id int64) string { return formatInt(id) }
