package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the terminal dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Open key.Binding // Show the detail of the selected grant.
	Back key.Binding // Return from the detail screen.

	Search key.Binding // Focus the keyword input.
	Status key.Binding // Cycle the status filter.
	Source key.Binding // Cycle the source filter.
	Sort   key.Binding // Cycle the sort selector.

	NextPage key.Binding
	PrevPage key.Binding

	Refresh key.Binding
	Sync    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "上へ"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "下へ"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "詳細"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "一覧に戻る"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "キーワード"),
	),
	Status: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "ステータス"),
	),
	Source: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "ソース"),
	),
	Sort: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "並び順"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n/→", "次へ"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p/←", "前へ"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "再読み込み"),
	),
	Sync: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "データ同期"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "ヘルプ"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "終了"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Search, k.Status, k.Source, k.Sort, k.Sync, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.Search, k.Status, k.Source, k.Sort},
		{k.PrevPage, k.NextPage, k.Refresh, k.Sync},
		{k.Help, k.Quit},
	}
}
