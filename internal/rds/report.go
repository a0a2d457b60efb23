package rds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/winops-io/opsreport/internal/report"
)

// dateLayout is the display format used for every date column
const dateLayout = "02 Jan 2006 @ 15:04"

// BuildKeyPackFragment renders the keypack table
func BuildKeyPackFragment(packs []KeyPack) report.Fragment {
	rows := make([][]string, 0, len(packs))
	for _, p := range packs {
		rows = append(rows, []string{
			strconv.Itoa(p.KeyPackID),
			p.ProductVersion,
			p.TypeAndModel,
			strconv.Itoa(p.TotalLicenses),
			strconv.Itoa(p.IssuedCount),
			strconv.Itoa(p.AvailableLicenses),
			p.ExpirationDate.Format(dateLayout),
		})
	}

	return report.Fragment{
		Heading: fmt.Sprintf("%d RDS License KeyPacks", len(packs)),
		Headers: []string{"Key Pack ID", "Product Version", "Type & Model", "Total", "Issued", "Available", "Expires"},
		Rows:    rows,
	}
}

// BuildLicenseFragment renders the issued-license table. Product
// versions are resolved through the keypack list; a license referencing
// an unknown keypack gets an empty version column.
func BuildLicenseFragment(licenses []IssuedLicense, packs []KeyPack) report.Fragment {
	versions := make(map[int]string, len(packs))
	for _, p := range packs {
		versions[p.KeyPackID] = p.ProductVersion
	}

	rows := make([][]string, 0, len(licenses))
	for _, l := range licenses {
		rows = append(rows, []string{
			formatIssuedTo(l.IssuedTo),
			versions[l.KeyPackID],
			l.IssueDate.Format(dateLayout),
			l.ExpirationDate.Format(dateLayout),
		})
	}

	return report.Fragment{
		Heading: fmt.Sprintf("%d Issued RDS Licenses", len(licenses)),
		Headers: []string{"Issued To", "Product Version", "Issued", "Expires"},
		Rows:    rows,
	}
}

// formatIssuedTo drops the DOMAIN\ prefix from an issued-to identity and
// uppercases the remainder. Identities without a separator pass through
// uppercased unchanged.
func formatIssuedTo(identity string) string {
	parts := strings.Split(identity, `\`)
	return strings.ToUpper(parts[len(parts)-1])
}
