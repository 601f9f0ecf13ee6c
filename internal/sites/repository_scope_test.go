package sites

import (
	"strings"
	"testing"
)

func TestSiteLookupQueriesSelectFromSitesTable(t *testing.T) {
	for name, query := range map[string]string{
		"by id":       siteByIDQuery,
		"by hostname": siteByHostnameQuery,
		"list":        listSitesQuery,
	} {
		if !strings.Contains(strings.ToLower(query), "from sites") {
			t.Fatalf("expected %s query to read from the sites table", name)
		}
	}
}

func TestSingleSiteQueriesAreKeyed(t *testing.T) {
	if !strings.Contains(strings.ToLower(siteByIDQuery), "where id = $1") {
		t.Fatal("expected by-id query to filter on id")
	}
	if !strings.Contains(strings.ToLower(siteByHostnameQuery), "where hostname = $1") {
		t.Fatal("expected by-hostname query to filter on hostname")
	}
}
