package util

import "strconv"

// ParseId parses a route id parameter.
func ParseId(val string) (int64, *HTTPError) {
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, MalformedIdHTTPErr
	}
	return id, nil
}
