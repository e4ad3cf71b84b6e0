// README: License class vs vehicle category compatibility table.
package trip

import "strings"

// categoryClasses maps a vehicle category to the license classes allowed to
// drive it. Unrecognized categories are treated as compatible with any class;
// extend the table before registering a new restricted category.
var categoryClasses = map[string][]string{
	"van":          {"B", "C", "C1", "CE"},
	"box_truck":    {"C", "C1", "CE"},
	"refrigerated": {"C", "C1", "CE"},
	"flatbed":      {"C", "CE"},
	"heavy_truck":  {"CE"},
	"tanker":       {"CE"},
}

// LicenseCompatible reports whether a license class may operate a vehicle
// category. Categories absent from the table default to permissive.
func LicenseCompatible(category, class string) bool {
	allowed, ok := categoryClasses[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return true
	}
	class = strings.ToUpper(strings.TrimSpace(class))
	for _, c := range allowed {
		if c == class {
			return true
		}
	}
	return false
}
