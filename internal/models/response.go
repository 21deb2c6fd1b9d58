package models

import (
	"github.com/canvasstrack/voterroll/internal/clock"
)

// ResponseModel Base response structure that can be reused
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// NewOKResponseWithClock creates a successful response using the provided clock.
func NewOKResponseWithClock(data interface{}, c clock.Clock) ResponseModel {
	return NewResponseWithClock(200, data, "OK", c)
}

// NewListResponseWithClock wraps one page of a list.
func NewListResponseWithClock(list interface{}, page Page, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"list":          list,
		"page":          page.Page,
		"pageSize":      page.PageSize,
		"totalResults":  page.TotalResults,
		"showing":       page.Showing,
		"limitExceeded": page.LimitExceeded,
		"searchQuery":   page.SearchQuery,
	}
	return NewOKResponseWithClock(data, c)
}

func NewEntryResponseWithClock(entry interface{}, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"entry": entry,
	}
	return NewOKResponseWithClock(data, c)
}

// NewResponseWithClock creates a standard response using the provided clock.
func NewResponseWithClock(code int, data interface{}, text string, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTimeWithClock(c),
		Data:        data,
		Text:        text,
		Version:     2,
	}
}

// ResponseCurrentTimeWithClock returns the current time from the provided clock as Unix milliseconds.
func ResponseCurrentTimeWithClock(c clock.Clock) int64 {
	return c.NowUnixMilli()
}

// Page describes the slice of a listing carried by a list response.
type Page struct {
	Page          int
	PageSize      int
	TotalResults  int64
	Showing       int
	LimitExceeded bool    // a filtered search matched more voters than are ranked
	SearchQuery   *string // nil when no search was applied
}
