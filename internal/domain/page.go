package domain

// PageRequest is the caller-supplied pagination/sort input. Pages are
// 1-indexed. SortBy must come from the entity's allow-list; unknown
// fields are rejected by the service, not silently ignored.
type PageRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by,omitempty"`
	SortDesc bool   `json:"sort_desc,omitempty"`
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Normalize clamps page/pageSize to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the SQL offset for the request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageInfo describes one page of a list result. Total always reflects the
// count of rows visible to the actor, independent of page/pageSize.
type PageInfo struct {
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	PageCount int   `json:"page_count"`
}

func NewPageInfo(total int64, req PageRequest) PageInfo {
	count := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		count++
	}
	return PageInfo{Total: total, Page: req.Page, PageSize: req.PageSize, PageCount: count}
}
