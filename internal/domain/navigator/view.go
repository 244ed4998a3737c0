package navigator

import "ezlearn/internal/domain/course"

// View is a read-only snapshot of the page.
type View struct {
	Target          Target           `json:"target"`
	Loaded          bool             `json:"loaded"`
	Title           string           `json:"title"`
	ParentGroupName string           `json:"parentUnit"`
	ActiveTab       Tab              `json:"activeTab"`
	EditMode        EditMode         `json:"editMode"`
	IsLoading       bool             `json:"isLoading"`
	Overview        string           `json:"overview"`
	Draft           *string          `json:"draft,omitempty"`
	MediaRef        string           `json:"fileUrl"`
	MediaKind       course.MediaKind `json:"lectureType"`
	HasReplacement  bool             `json:"hasReplacement"`
	CanGoPrevious   bool             `json:"canGoPrevious"`
	CanGoNext       bool             `json:"canGoNext"`
}

// View returns the current page snapshot.
func (n *Navigator) View() View {
	v := View{
		Target:          n.target,
		Loaded:          n.loaded,
		Title:           n.resolution.Content.Title,
		ParentGroupName: n.resolution.ParentGroupName,
		ActiveTab:       n.tab,
		EditMode:        n.mode,
		IsLoading:       n.isLoading,
		Overview:        n.overview,
		MediaRef:        n.mediaRef,
		MediaKind:       n.mediaKind,
		HasReplacement:  n.replacement != nil,
		CanGoPrevious:   n.CanGo(Previous),
		CanGoNext:       n.CanGo(Next),
	}
	if n.draft != nil {
		d := *n.draft
		v.Draft = &d
	}
	return v
}
