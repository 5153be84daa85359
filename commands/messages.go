package commands

// Reply texts. Kept in one place so tests can assert on them.
const (
	msgMissingEmail = "Please use `login <email>` to log in here."
	msgSendPassword = "Please send your password here to log in."
	msgSend2FACode  = "You have two-factor authentication turned on. " +
		"Please enter the code you received via SMS or your authenticator app here."
	msgLoginSuccess    = "Successfully logged in"
	msgLoginFailed     = "Failed to log in"
	msgAlreadyLoggedIn = "You're already logged in."
	msgNotLoggedIn     = "You are not logged in"
	msgLoggedOut       = "Logged out"
	msgNothingToCancel = "No pending command to cancel"
	msgCancelled       = "Cancelled the pending command"
	msgUnknownCommand  = "Unknown command. Available commands: login, whoami, logout, cancel"
)
