package scenario

// Dashboard returns the built-in walk through the developer dashboard:
// Dashboard, Subscriptions (including the add-subscription dialog), Import
// Data and Admin. Screenshot names are relative to the output directory.
func Dashboard() []Step {
	return []Step{
		{
			Name:   "Dashboard",
			Action: Goto("/dashboard"),
			Wait:   WaitNetworkIdle,
			Assertions: []Assertion{
				Visible(ByText("Registered Developers")),
				Visible(ByText("Growth Evolution")),
			},
			Screenshot: "dashboard.png",
		},
		{
			Name:   "Subscriptions",
			Action: Click(ByRole("button", "Subscriptions")),
			Wait:   WaitNetworkIdle,
			Assertions: []Assertion{
				Visible(ByRole("heading", "Subscriptions")),
				Visible(ByText("Add Subscription")),
			},
		},
		{
			Name:   "Add Subscription dialog",
			Action: Click(ByRole("button", "Add Subscription")),
			Wait:   WaitNone,
			Assertions: []Assertion{
				Visible(ByText("New Subscription")),
			},
		},
		{
			Name:   "Dismiss Add Subscription dialog",
			Action: Click(ByRole("button", "Cancel")),
			Wait:   WaitNone,
			Assertions: []Assertion{
				Hidden(ByText("New Subscription")),
			},
			Screenshot: "subscriptions.png",
		},
		{
			Name:   "Import Data",
			Action: Click(ByRole("button", "Import Data")),
			Wait:   WaitNetworkIdle,
			Assertions: []Assertion{
				Visible(ByRole("heading", "Import Data")),
				Visible(ByText("Select CSV File")),
			},
			Screenshot: "import.png",
		},
		{
			Name:   "Admin & Leaders",
			Action: Click(ByRole("button", "Admin & Leaders")),
			Wait:   WaitNetworkIdle,
			Assertions: []Assertion{
				Visible(ByRole("heading", "Super Admin Dashboard")),
			},
			Screenshot: "admin.png",
		},
	}
}
