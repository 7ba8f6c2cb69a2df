package http_test

import (
	"net/url"
	"strconv"
)

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func urlEscape(s string) string { return url.QueryEscape(s) }
