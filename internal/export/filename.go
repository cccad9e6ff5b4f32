package export

import (
	"strings"

	"github.com/gosimple/slug"
)

// FileName builds a download name such as "acme-ab-2024-03-payroll.csv".
func FileName(employerName, payPeriod, ext string) string {
	base := slug.Make(strings.TrimSpace(employerName + " " + payPeriod))
	if base == "" {
		base = "records"
	}
	return base + "-payroll." + ext
}
