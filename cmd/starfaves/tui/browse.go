package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marshallshelly/starfaves/internal/models"
)

// FavoriteSource is what the browser reads and removes favorites through.
// *favorites.Store implements it.
type FavoriteSource interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	RemoveFavorite(ctx context.Context, id int) error
}

// BrowseMode represents the current mode of the browser.
type BrowseMode int

const (
	ModeLoading BrowseMode = iota
	ModeList
	ModeConfirm
	ModeError
)

// BrowseModel lists one user's favorites and removes them on request.
type BrowseModel struct {
	ctx          context.Context
	source       FavoriteSource
	userID       int
	mode         BrowseMode
	list         list.Model
	confirmation ConfirmationDialog
	pending      models.Favorite
	user         *models.User
	status       string
	err          error
	width        int
	height       int
}

// NewBrowseModel creates a browser for userID's favorites.
func NewBrowseModel(ctx context.Context, source FavoriteSource, userID int) BrowseModel {
	l := list.New([]list.Item{}, FavoriteItemDelegate{}, 0, 0)
	l.Title = "Favorites"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return BrowseModel{
		ctx:    ctx,
		source: source,
		userID: userID,
		mode:   ModeLoading,
		list:   l,
	}
}

// Messages
type userLoadedMsg struct {
	user *models.User
}

type favoriteRemovedMsg struct {
	id int
}

type errorMsg struct {
	err error
}

// Commands
func loadUserCmd(ctx context.Context, source FavoriteSource, userID int) tea.Cmd {
	return func() tea.Msg {
		user, err := source.GetUser(ctx, userID)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to load user %d: %w", userID, err)}
		}
		return userLoadedMsg{user: user}
	}
}

func removeFavoriteCmd(ctx context.Context, source FavoriteSource, id int) tea.Cmd {
	return func() tea.Msg {
		if err := source.RemoveFavorite(ctx, id); err != nil {
			return errorMsg{err: fmt.Errorf("failed to remove favorite %d: %w", id, err)}
		}
		return favoriteRemovedMsg{id: id}
	}
}

// Init loads the user.
func (m BrowseModel) Init() tea.Cmd {
	return loadUserCmd(m.ctx, m.source, m.userID)
}

// Err returns the error that stopped the browser, if any.
func (m BrowseModel) Err() error {
	return m.err
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case userLoadedMsg:
		m.user = msg.user
		m.list.Title = fmt.Sprintf("Favorites of %s", msg.user.Email)
		items := make([]list.Item, len(msg.user.Favorites))
		for i, f := range msg.user.Favorites {
			items[i] = FavoriteItem{Favorite: f}
		}
		m.mode = ModeList
		return m, m.list.SetItems(items)

	case favoriteRemovedMsg:
		m.status = successStyle.Render(fmt.Sprintf("✓ Removed favorite #%d", msg.id))
		return m, loadUserCmd(m.ctx, m.source, m.userID)

	case errorMsg:
		// Without a loaded user there is nothing to browse.
		if m.user == nil {
			m.mode = ModeError
			m.err = msg.err
			return m, nil
		}
		m.mode = ModeList
		m.status = dangerStyle.Render("✗ " + msg.err.Error())
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeLoading:
			if msg.String() == "ctrl+c" || msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil

		case ModeList:
			if m.list.FilterState() == list.Filtering {
				break
			}
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit

			case "d", "delete":
				item, ok := m.list.SelectedItem().(FavoriteItem)
				if !ok {
					return m, nil
				}
				m.pending = item.Favorite
				m.confirmation = NewConfirmationDialog(
					"Remove Favorite",
					fmt.Sprintf("Remove %s %q from %s's favorites?",
						item.Kind(), item.Favorite.TargetName(), m.user.Email),
				)
				m.mode = ModeConfirm
				return m, nil

			case "r":
				m.status = ""
				return m, loadUserCmd(m.ctx, m.source, m.userID)
			}

		case ModeConfirm:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			switch m.confirmation.Update(msg) {
			case ConfirmYes:
				m.mode = ModeList
				return m, removeFavoriteCmd(m.ctx, m.source, m.pending.ID)
			case ConfirmNo:
				m.mode = ModeList
			}
			return m, nil

		case ModeError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI
func (m BrowseModel) View() string {
	switch m.mode {
	case ModeLoading:
		return subtitleStyle.Render("Loading favorites…")

	case ModeList:
		help := helpStyle.Render(
			FormatKey("↑/↓", "navigate") + " • " +
				FormatKey("/", "filter") + " • " +
				FormatKey("d", "remove") + " • " +
				FormatKey("r", "reload") + " • " +
				FormatKey("q", "quit"),
		)
		return lipgloss.JoinVertical(lipgloss.Left,
			m.list.View(),
			m.status,
			help,
		)

	case ModeConfirm:
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			m.confirmation.View(),
		)

	case ModeError:
		msg := titleStyle.Render("Browse Failed") + "\n\n" +
			dangerStyle.Render(m.err.Error()) + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))

		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(msg),
		)
	}

	return "Unknown mode"
}

// RunBrowseUI runs the browser until the user quits. It returns the error
// that stopped it, if any.
func RunBrowseUI(ctx context.Context, source FavoriteSource, userID int) error {
	p := tea.NewProgram(NewBrowseModel(ctx, source, userID), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(BrowseModel); ok {
		return m.Err()
	}
	return nil
}
