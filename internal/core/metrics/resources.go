package metrics

// Static resource catalogs per kind. Stand-ins for the inventory service the
// console reads resource names from.
var (
	vmResources = []string{"web-server-01", "web-server-02", "app-server-01", "db-server-01"}
	lbResources = []string{"lb-frontend-01", "lb-internal-01", "lb-api-01"}
)

// Resources returns the resource names of a kind.
func Resources(kind Kind) []string {
	switch kind {
	case KindVM:
		return vmResources
	case KindLB:
		return lbResources
	}
	return nil
}

// HasResource reports whether the kind's catalog contains name.
func HasResource(kind Kind, name string) bool {
	for _, r := range Resources(kind) {
		if r == name {
			return true
		}
	}
	return false
}
