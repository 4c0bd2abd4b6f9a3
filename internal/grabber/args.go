package grabber

import "strings"

// modulePrefix is the naming convention every grabber module follows.
const modulePrefix = "tv_meta_"

// SimpleName derives a grabber's argument namespace from its identifier: the
// module prefix is stripped and underscores become dashes, so
// tv_meta_tmdb_simple owns the tmdb-simple- argument space.
func SimpleName(id string) string {
	return strings.ReplaceAll(strings.TrimPrefix(id, modulePrefix), "_", "-")
}

// RouteArgs extracts the arguments namespaced to one grabber from the flat
// argument map: keys beginning with the grabber's simple name plus separator
// are selected and the prefix stripped. Matching anchors on the full prefix
// so tmdb- never captures tmdbabc- keys.
func RouteArgs(all map[string]string, id string) map[string]string {
	prefix := SimpleName(id) + "-"
	routed := make(map[string]string)
	for key, value := range all {
		if strings.HasPrefix(key, prefix) {
			routed[strings.TrimPrefix(key, prefix)] = value
		}
	}
	return routed
}
