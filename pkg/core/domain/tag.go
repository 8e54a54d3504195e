package domain

// Tag is a label attached to links. Name is unique across the vocabulary.
type Tag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	ParentID   *int64 `json:"parent_id,omitempty"`
	IsCategory bool   `json:"is_category,omitempty"`
}

// TagWithCount is a tag plus the number of links bearing it
type TagWithCount struct {
	Tag
	Count int `json:"count"`
}

// CategoryWithTags is a category and its child tags
type CategoryWithTags struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Color string         `json:"color"`
	Count int            `json:"count"`
	Tags  []TagWithCount `json:"tags"`
}
