package gui

// Side names one half of the window.
type Side int

const (
	Left Side = iota
	Right
)

var sides = [...]Side{Left, Right}

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Short is the status bar prefix.
func (s Side) Short() string {
	if s == Right {
		return "R"
	}
	return "L"
}

func (s Side) DefaultTitle() string {
	if s == Right {
		return "Load Right Folder"
	}
	return "Load Left Folder"
}
