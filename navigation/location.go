package navigation

import "strings"

// Group is the top-level route group.
type Group string

const (
	GroupAuth  Group = "auth"
	GroupTabs  Group = "tabs"
	GroupOther Group = "other"
)

// Screens inside the tabs group that act as role homes.
const (
	ScreenViewerHome = "index"
	ScreenScorerHome = "scorer-home"
)

// Redirect targets.
const (
	AuthEntry  = "/(auth)"
	ViewerHome = "/(tabs)/index"
	ScorerHome = "/(tabs)/scorer-home"
)

// Location is a parsed route.
type Location struct {
	Group Group
	// Screen is the first segment below the group. For GroupOther it is the
	// whole normalized path.
	Screen string
}

// ParseLocation accepts "/(auth)/login", "auth/login", "(tabs)" and the like.
// A tabs location without a screen is the index screen.
func ParseLocation(path string) Location {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	segments := strings.Split(trimmed, "/")

	head := strings.TrimSuffix(strings.TrimPrefix(segments[0], "("), ")")
	screen := ""
	if len(segments) > 1 {
		screen = segments[1]
	}

	switch Group(head) {
	case GroupAuth:
		return Location{Group: GroupAuth, Screen: screen}
	case GroupTabs:
		if screen == "" {
			screen = ScreenViewerHome
		}
		return Location{Group: GroupTabs, Screen: screen}
	}
	return Location{Group: GroupOther, Screen: trimmed}
}

// Path renders l in router form.
func (l Location) Path() string {
	switch l.Group {
	case GroupAuth, GroupTabs:
		if l.Screen == "" {
			return "/(" + string(l.Group) + ")"
		}
		return "/(" + string(l.Group) + ")/" + l.Screen
	}
	return "/" + l.Screen
}

func (l Location) String() string {
	return l.Path()
}
