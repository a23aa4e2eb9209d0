package strftime

import "datetime/internal/calendar"

// Fixed templates for the common text forms.
const (
	TemplateISO8601 = "%Y-%m-%d %H:%M:%S"
	TemplateCTime   = "%c"
	TemplateRFC822  = "%a, %d %b %Y %T UTC"
	TemplateRFC822Z = "%a, %d %b %Y %T %z"
	TemplateRFC3339 = "%Y-%m-%dT%H:%M:%SZ"
)

var (
	ISO8601Layout = MustCompile(TemplateISO8601)
	CTimeLayout   = MustCompile(TemplateCTime)
	RFC822Layout  = MustCompile(TemplateRFC822)
	RFC822ZLayout = MustCompile(TemplateRFC822Z)
	RFC3339Layout = MustCompile(TemplateRFC3339)
)

// Named maps the builtin layout names accepted by configuration and the API.
var Named = map[string]*Layout{
	"iso8601": ISO8601Layout,
	"ctime":   CTimeLayout,
	"rfc822":  RFC822Layout,
	"rfc822z": RFC822ZLayout,
	"rfc3339": RFC3339Layout,
}

// ISO8601 renders r as "2009-02-13 23:31:30".
func ISO8601(r calendar.Record) (string, error) { return ISO8601Layout.Format(r) }

// CTime renders r as "Fri Feb 13 23:31:30 2009".
func CTime(r calendar.Record) (string, error) { return CTimeLayout.Format(r) }

// RFC822 renders r as "Fri, 13 Feb 2009 23:31:30 UTC".
func RFC822(r calendar.Record) (string, error) { return RFC822Layout.Format(r) }

// RFC822Z renders r as "Fri, 13 Feb 2009 23:31:30 -0000".
func RFC822Z(r calendar.Record) (string, error) { return RFC822ZLayout.Format(r) }

// RFC3339 renders r as "2009-02-13T23:31:30Z".
func RFC3339(r calendar.Record) (string, error) { return RFC3339Layout.Format(r) }
