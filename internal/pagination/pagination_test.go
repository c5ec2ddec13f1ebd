package pagination

import "testing"

func TestPageRequest_Defaults(t *testing.T) {
	req := PageRequest{}
	req.Defaults()
	if req.Page != 1 || req.PageSize != 20 {
		t.Fatalf("expected page 1 size 20, got page %d size %d", req.Page, req.PageSize)
	}

	req = PageRequest{Page: 3, PageSize: 5}
	req.Defaults()
	if req.Offset() != 10 {
		t.Errorf("expected offset 10, got %d", req.Offset())
	}

	req = PageRequest{Page: -2, PageSize: 5000}
	req.Defaults()
	if req.Page != 1 || req.PageSize != MaxPageSize {
		t.Errorf("expected page 1 size %d, got page %d size %d", MaxPageSize, req.Page, req.PageSize)
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]string(nil), 1, 20, 0)
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %#v", resp.Data)
	}
	if resp.TotalPages != 0 {
		t.Errorf("expected 0 pages, got %d", resp.TotalPages)
	}

	if zero := NewPageResponse([]string{}, 1, 0, 7); zero.TotalPages != 0 {
		t.Errorf("expected 0 pages for a zero page size, got %d", zero.TotalPages)
	}

	resp = NewPageResponse([]string{"a", "b"}, 2, 2, 5)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages for 5 items of 2, got %d", resp.TotalPages)
	}
	if resp.TotalItems != 5 || resp.Page != 2 || resp.PageSize != 2 {
		t.Errorf("unexpected metadata %+v", resp)
	}
}
