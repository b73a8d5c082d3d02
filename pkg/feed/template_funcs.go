package feed

import (
	"fmt"
	"html/template"
	"time"
)

const (
	itemDateLayout    = "January 2, 2006 - 3:04 PM"
	updatedDateLayout = "January 2, 2006, 3:04:05 PM MST"
	dcDateLayout      = "2006-01-02"
)

// TemplateFuncs returns a map of template helper functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate":    formatDate,
		"formatUpdated": formatUpdated,
		"updateCycle":   updateCycle,
	}
}

// formatDate formats an item date for display
func formatDate(t time.Time) string {
	return t.UTC().Format(itemDateLayout)
}

// formatUpdated formats the generation time shown in the page header
func formatUpdated(t time.Time) string {
	return t.UTC().Format(updatedDateLayout)
}

// dcDate formats the calendar date used in dc:date
func dcDate(t time.Time) string {
	return t.UTC().Format(dcDateLayout)
}

// updateCycle describes the refresh interval in words
func updateCycle(minutes int) string {
	switch {
	case minutes <= 0:
		return "few hours"
	case minutes == 60:
		return "hour"
	case minutes%60 == 0:
		return fmt.Sprintf("%d hours", minutes/60)
	case minutes == 1:
		return "minute"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
