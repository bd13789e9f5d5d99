package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#E8590C")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0a84ff"))
	botStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8590C"))
)

const (
	viewMain            = "main"
	viewMenu            = "menu"
	viewCart            = "cart"
	viewRecommendations = "recommendations"
	viewChat            = "chat"
	viewCheckout        = "checkout"
)

// Model defines the application state
type Model struct {
	mainMenu  list.Model
	menuList  list.Model
	recsList  list.Model
	cartTable table.Model
	chatInput textinput.Model
	nameInput textinput.Model
	spinner   spinner.Model
	client    *ApiClient

	cart       Cart
	summary    Summary
	transcript []string
	strategy   string

	loading     bool
	currentView string
	status      string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// dishItem represents a menu item in a list
type dishItem struct {
	MenuItem
}

func (i dishItem) Title() string { return fmt.Sprintf("%s  $%.2f", i.Name, i.Price) }
func (i dishItem) Description() string {
	tags := strings.Join(i.Dietary, ", ")
	if tags == "" {
		tags = i.Category
	}
	return fmt.Sprintf("★ %.1f  %s", i.Rating, tags)
}
func (i dishItem) FilterValue() string { return i.Name }

// Initialize the model
func initialModel() Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "Menu", desc: "Browse dishes and add them to your cart"},
		item{title: "Cart", desc: "Review your cart and check out"},
		item{title: "Recommendations", desc: "Dishes picked for your preferences"},
		item{title: "Chat", desc: "Ask the SmartBite assistant"},
		item{title: "Exit", desc: "Exit the application"},
	}

	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "SmartBite CLI"

	menuList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	menuList.Title = "Menu"

	recsList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	recsList.Title = "Recommended for you"

	columns := []table.Column{
		{Title: "Dish", Width: 24},
		{Title: "Qty", Width: 5},
		{Title: "Price", Width: 10},
		{Title: "Line", Width: 10},
	}
	cartTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about hours, the menu, or say \"add the tiramisu to my cart\""
	chatInput.CharLimit = 500
	chatInput.Width = 60

	nameInput := textinput.New()
	nameInput.Placeholder = "Your name"
	nameInput.CharLimit = 80
	nameInput.Width = 30

	return Model{
		mainMenu:    mainMenu,
		menuList:    menuList,
		recsList:    recsList,
		cartTable:   cartTable,
		chatInput:   chatInput,
		nameInput:   nameInput,
		spinner:     s,
		client:      NewApiClient(),
		transcript:  []string{botStyle.Render("Bot: ") + "Hi! I'm your SmartBite assistant. How can I help you today?"},
		currentView: viewMain,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen, checkHealth(m.client))
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
		m.menuList.SetSize(msg.Width-h, msg.Height-v-2)
		m.recsList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case menuMsg:
		m.loading = false
		m.menuList.SetItems(toDishItems(msg.items))
		return m, nil
	case cartMsg:
		m.loading = false
		m.setCart(msg.cart, msg.summary)
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil
	case recommendationsMsg:
		m.loading = msg.recs.Loading
		m.strategy = msg.recs.Strategy
		if msg.recs.Fallback {
			m.strategy += " (fallback)"
		}
		m.recsList.SetItems(toDishItems(msg.recs.Items))
		if msg.recs.Loading {
			return m, fetchRecommendations(m.client)
		}
		return m, nil
	case chatMsg:
		m.loading = false
		m.transcript = append(m.transcript, botStyle.Render("Bot: ")+msg.reply.Text)
		return m, nil
	case orderMsg:
		m.loading = false
		m.error = ""
		m.status = fmt.Sprintf("Order %s confirmed, total $%.2f", shortID(msg.order.ID), msg.order.Total)
		m.currentView = viewCart
		return m, fetchCart(m.client, "")
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case viewMain:
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case viewMenu:
		m.menuList, cmd = m.menuList.Update(msg)
	case viewRecommendations:
		m.recsList, cmd = m.recsList.Update(msg)
	case viewCart:
		m.cartTable, cmd = m.cartTable.Update(msg)
	case viewChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	case viewCheckout:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}

	return m, cmd
}

// handleKey processes the keys each view reacts to; unhandled keys fall through to the focused component
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	key := msg.String()

	if key == "esc" {
		m.error = ""
		m.status = ""
		switch m.currentView {
		case viewCheckout:
			m.currentView = viewCart
			m.nameInput.Blur()
		case viewMain:
			return m, nil, false
		default:
			m.currentView = viewMain
			m.chatInput.Blur()
		}
		return m, nil, true
	}

	switch m.currentView {
	case viewMain:
		if key == "q" {
			return m, tea.Quit, true
		}
		if key != "enter" {
			return m, nil, false
		}
		selected, ok := m.mainMenu.SelectedItem().(item)
		if !ok {
			return m, nil, true
		}
		m.error = ""
		m.status = ""
		m.loading = true
		switch selected.title {
		case "Exit":
			return m, tea.Quit, true
		case "Menu":
			m.currentView = viewMenu
			return m, fetchMenu(m.client), true
		case "Cart":
			m.currentView = viewCart
			return m, fetchCart(m.client, ""), true
		case "Recommendations":
			m.currentView = viewRecommendations
			return m, fetchRecommendations(m.client), true
		case "Chat":
			m.loading = false
			m.currentView = viewChat
			m.chatInput.Focus()
			return m, textinput.Blink, true
		}

	case viewMenu, viewRecommendations:
		if key != "enter" {
			return m, nil, false
		}
		selected := m.menuList.SelectedItem()
		if m.currentView == viewRecommendations {
			selected = m.recsList.SelectedItem()
		}
		if dish, ok := selected.(dishItem); ok {
			return m, addToCart(m.client, dish.MenuItem), true
		}
		return m, nil, true

	case viewCart:
		switch key {
		case "+", "=", "-":
			line, ok := m.selectedLine()
			if !ok {
				return m, nil, true
			}
			quantity := line.Quantity + 1
			if key == "-" {
				quantity = line.Quantity - 1
			}
			return m, updateQuantity(m.client, line.ID, quantity), true
		case "x", "delete":
			if line, ok := m.selectedLine(); ok {
				return m, updateQuantity(m.client, line.ID, 0), true
			}
			return m, nil, true
		case "o":
			if m.cart.ItemCount == 0 {
				m.error = "Your cart is empty"
				return m, nil, true
			}
			m.currentView = viewCheckout
			m.nameInput.SetValue("")
			m.nameInput.Focus()
			return m, textinput.Blink, true
		}

	case viewChat:
		if key != "enter" {
			return m, nil, false
		}
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" {
			return m, nil, true
		}
		m.chatInput.SetValue("")
		m.transcript = append(m.transcript, userStyle.Render("You: ")+text)
		m.loading = true
		return m, sendChat(m.client, text), true

	case viewCheckout:
		if key != "enter" {
			return m, nil, false
		}
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.error = "Please enter your name"
			return m, nil, true
		}
		m.loading = true
		m.nameInput.Blur()
		return m, checkout(m.client, Customer{Name: name}), true
	}

	return m, nil, false
}

func (m *Model) setCart(cart Cart, summary Summary) {
	m.cart = cart
	m.summary = summary

	rows := make([]table.Row, 0, len(cart.Items))
	for _, line := range cart.Items {
		rows = append(rows, table.Row{
			line.Name,
			fmt.Sprintf("%d", line.Quantity),
			fmt.Sprintf("$%.2f", line.Price),
			fmt.Sprintf("$%.2f", line.Price*float64(line.Quantity)),
		})
	}
	m.cartTable.SetRows(rows)
	if m.cartTable.Cursor() >= len(rows) && len(rows) > 0 {
		m.cartTable.SetCursor(len(rows) - 1)
	}
}

func (m Model) selectedLine() (CartLine, bool) {
	i := m.cartTable.Cursor()
	if i < 0 || i >= len(m.cart.Items) {
		return CartLine{}, false
	}
	return m.cart.Items[i], true
}

// View renders the UI
func (m Model) View() string {
	var view string
	switch m.currentView {
	case viewMain:
		return docStyle.Render(m.mainMenu.View() + m.footer())
	case viewMenu:
		view = m.menuList.View() + "\nPress 'enter' to add to cart, '/' to filter, 'esc' to go back\n"
	case viewRecommendations:
		view = titleStyle.Render("Recommendations") + " " + infoStyle.Render(m.strategy) + "\n\n"
		view += m.recsList.View() + "\nPress 'enter' to add to cart, 'esc' to go back\n"
	case viewCart:
		view = titleStyle.Render(fmt.Sprintf("Cart (%d items)", m.cart.ItemCount)) + "\n\n"
		if m.cart.ItemCount == 0 {
			view += "Your cart is empty\n"
		} else {
			view += m.cartTable.View() + "\n\n" + summaryView(m.summary)
		}
		view += "\nPress '+'/'-' to change quantity, 'x' to remove, 'o' to check out, 'esc' to go back\n"
	case viewChat:
		view = titleStyle.Render("SmartBite Assistant") + "\n\n"
		view += strings.Join(m.transcript, "\n") + "\n\n" + m.chatInput.View() + "\n"
		view += "\nPress 'enter' to send, 'esc' to go back\n"
	case viewCheckout:
		view = titleStyle.Render("Checkout") + "\n\n" + summaryView(m.summary) + "\n"
		view += m.nameInput.View() + "\n\nPress 'enter' to place the order, 'esc' to cancel\n"
	default:
		view = "Loading..."
	}
	return docStyle.Render(view + m.footer())
}

func (m Model) footer() string {
	var footer string
	if m.loading {
		footer += "\n" + m.spinner.View() + " Loading..."
	}
	if m.status != "" {
		footer += "\n" + successStyle.Render(m.status)
	}
	if m.error != "" {
		footer += "\n" + errorStyle.Render(m.error)
	}
	return footer
}

func summaryView(s Summary) string {
	view := fmt.Sprintf("Subtotal:  $%.2f\n", s.Subtotal)
	view += fmt.Sprintf("Tax:       $%.2f\n", s.Tax)
	view += fmt.Sprintf("Delivery:  $%.2f\n", s.DeliveryFee)
	view += fmt.Sprintf("Total:     $%.2f\n", s.Total)
	return view
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func toDishItems(items []MenuItem) []list.Item {
	result := make([]list.Item, len(items))
	for i, it := range items {
		result[i] = dishItem{it}
	}
	return result
}

// Custom message types for the tea.Model
type menuMsg struct {
	items []MenuItem
}

type cartMsg struct {
	cart    Cart
	summary Summary
	status  string
}

type recommendationsMsg struct {
	recs Recommendations
}

type chatMsg struct {
	reply ChatReply
}

type orderMsg struct {
	order Order
}

type errorMsg struct {
	err string
}

// checkHealth reports an unreachable API up front
func checkHealth(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		if err := client.CheckHealth(); err != nil {
			return errorMsg{err: fmt.Sprintf("API server at %s is not available: %v", client.BaseURL, err)}
		}
		return nil
	}
}

// fetchMenu retrieves the menu from the API
func fetchMenu(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetMenu("")
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching menu: %v", err)}
		}
		return menuMsg{items: items}
	}
}

// fetchCart retrieves the cart and its order summary
func fetchCart(client *ApiClient, status string) tea.Cmd {
	return func() tea.Msg {
		cart, err := client.GetCart()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching cart: %v", err)}
		}
		summary, err := client.GetSummary()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching summary: %v", err)}
		}
		return cartMsg{cart: *cart, summary: *summary, status: status}
	}
}

// addToCart adds a dish and refreshes the cart
func addToCart(client *ApiClient, dish MenuItem) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.AddToCart(dish.ID); err != nil {
			return errorMsg{err: fmt.Sprintf("Error adding %s: %v", dish.Name, err)}
		}
		return fetchCart(client, fmt.Sprintf("Added %s to your cart", dish.Name))()
	}
}

// updateQuantity changes a cart line and refreshes the cart
func updateQuantity(client *ApiClient, id string, quantity int) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.UpdateQuantity(id, quantity); err != nil {
			return errorMsg{err: fmt.Sprintf("Error updating cart: %v", err)}
		}
		return fetchCart(client, "")()
	}
}

// fetchRecommendations retrieves the recommendation feed
func fetchRecommendations(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		recs, err := client.GetRecommendations()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching recommendations: %v", err)}
		}
		return recommendationsMsg{recs: *recs}
	}
}

// sendChat sends a message to the assistant
func sendChat(client *ApiClient, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.SendChat(text)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error sending message: %v", err)}
		}
		return chatMsg{reply: *reply}
	}
}

// checkout places the order
func checkout(client *ApiClient, customer Customer) tea.Cmd {
	return func() tea.Msg {
		order, err := client.Checkout(customer)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error placing order: %v", err)}
		}
		return orderMsg{order: *order}
	}
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
