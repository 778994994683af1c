package dataprocessing

import (
	"regexp"
	"strings"
)

// itsmTicketPattern matches work order, request for change, change, request
// and incident identifiers by prefix.
var itsmTicketPattern = regexp.MustCompile(`(?i)^(WO|RF|CHG|REQ|INC)`)

// IsITSMTicket reports whether a cell value looks like an ITSM ticket.
func IsITSMTicket(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return itsmTicketPattern.MatchString(value)
}
