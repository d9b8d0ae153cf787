package employees_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

type directory struct {
	Employees []struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Manager string `json:"manager"`
	} `json:"employees"`
	Total      int64  `json:"total"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevCursor string `json:"prev_cursor"`
	NextCursor string `json:"next_cursor"`
}

func (d directory) emails() string {
	var out []string
	for _, e := range d.Employees {
		out = append(out, e.Email)
	}
	return strings.Join(out, " ")
}

func TestServeList_Pages(t *testing.T) {
	router := newRouter(t)

	page := func(query string) directory {
		t.Helper()
		rec := get(t, router, "/?"+query)
		rec.AssertStatus(t, http.StatusOK)
		var d directory
		rec.DecodeJSON(t, &d)
		return d
	}

	first := page("size=2")
	if first.emails() != "ann@example.com bob@example.com" || first.HasPrev || !first.HasNext || first.Total != 5 {
		t.Fatalf("first page = %+v", first)
	}
	if first.Employees[0].Name != "Ann Top" || first.Employees[0].Manager != "none" {
		t.Errorf("ann row = %+v", first.Employees[0])
	}

	second := page("size=2&after=" + url.QueryEscape(first.NextCursor))
	if second.emails() != "cat@example.com dan@example.com" || !second.HasPrev || !second.HasNext {
		t.Fatalf("second page = %+v", second)
	}

	last := page("size=2&after=" + url.QueryEscape(second.NextCursor))
	if last.emails() != "eve@example.com" || last.HasNext || last.NextCursor != "" {
		t.Fatalf("last page = %+v", last)
	}
	if last.Employees[0].Manager != "pending" {
		t.Errorf("eve manager = %q, want pending", last.Employees[0].Manager)
	}

	back := page("size=2&before=" + url.QueryEscape(last.PrevCursor))
	if back.emails() != "cat@example.com dan@example.com" || !back.HasPrev || !back.HasNext {
		t.Errorf("back page = %+v", back)
	}
}

func TestServeList_BadParams(t *testing.T) {
	router := newRouter(t)
	for _, q := range []string{"size=0", "size=abc", "after=!!!", "after=x&before=y"} {
		rec := get(t, router, "/?"+q)
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}
