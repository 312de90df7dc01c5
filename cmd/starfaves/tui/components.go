package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marshallshelly/starfaves/internal/models"
)

// ConfirmResult is the outcome of a key press in a ConfirmationDialog.
type ConfirmResult int

const (
	ConfirmPending ConfirmResult = iota
	ConfirmYes
	ConfirmNo
)

// ConfirmationDialog represents a yes/no confirmation dialog
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
}

// NewConfirmationDialog creates a dialog with "No" preselected.
func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{
		Title:   title,
		Message: message,
	}
}

// Update moves the selection and reports whether the user decided.
func (d *ConfirmationDialog) Update(msg tea.Msg) ConfirmResult {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return ConfirmPending
	}

	switch key.String() {
	case "left", "h":
		d.YesSelected = true
	case "right", "l":
		d.YesSelected = false
	case "y":
		return ConfirmYes
	case "n", "esc", "q":
		return ConfirmNo
	case "enter":
		if d.YesSelected {
			return ConfirmYes
		}
		return ConfirmNo
	}
	return ConfirmPending
}

// View renders the confirmation dialog
func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")

	if d.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "navigate") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc", "cancel")))

	return boxStyle.Render(b.String())
}

// FavoriteItem is a favorite in the browse list.
type FavoriteItem struct {
	Favorite models.Favorite
}

// Kind returns the target kind, or "" for a favorite without a valid target.
func (i FavoriteItem) Kind() string {
	target, err := i.Favorite.Target()
	if err != nil {
		return ""
	}
	return string(target.Kind)
}

func (i FavoriteItem) FilterValue() string { return i.Favorite.TargetName() }

func (i FavoriteItem) Title() string {
	name := i.Favorite.TargetName()
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s %s", FormatKind(i.Kind()), name)
}

func (i FavoriteItem) Description() string {
	target, err := i.Favorite.Target()
	if err != nil {
		return dangerStyle.Render(err.Error())
	}
	return mutedStyle.Render(fmt.Sprintf("favorite #%d • %s", i.Favorite.ID, target))
}

// FavoriteItemDelegate renders FavoriteItems on two lines.
type FavoriteItemDelegate struct{}

func (d FavoriteItemDelegate) Height() int                             { return 2 }
func (d FavoriteItemDelegate) Spacing() int                            { return 1 }
func (d FavoriteItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d FavoriteItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(FavoriteItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}
