package dispatch

// Messages holds the canned comment texts posted during the scripted
// onboarding flow. Wording is a product concern; the defaults below are
// placeholders a deployment overrides from config.
type Messages struct {
	// Welcome opens the scripted conversation on a freshly priced issue
	Welcome string

	// WalletIntro explains why a wallet address is needed
	WalletIntro string

	// WalletExplainer answers the wallet command in the comment flow
	WalletExplainer string

	// WalletAddress is the fixed demo address posted via /wallet
	WalletAddress string
}

// DefaultMessages returns the stock onboarding texts
func DefaultMessages() Messages {
	return Messages{
		Welcome: "Hi! 👋 This issue is part of the onboarding demo. " +
			"Follow along with the next two comments to see how a task gets picked up.",
		WalletIntro: "Before starting a task, contributors register a wallet so rewards " +
			"can be paid out. The next comment registers a demo wallet.",
		WalletExplainer: "The wallet command links a payment address to your account. " +
			"Posting /start below assigns the task to you.",
		WalletAddress: "0x3a2E44e10AbEf5CB4a6E492c5ba93d30068d2D95",
	}
}
