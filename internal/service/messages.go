package service

// Тексты конвертов, которые видит клиент.
const (
	msgUnknownError = "An unknown error has occurred."

	msgUserCreated      = "Please take good care of your API key, you can't get it back after this."
	msgUserNotFound     = "A user with that API key was not found."
	msgUserNotExists    = "User does not exist."
	msgUserUpdated      = "User was updated as follows."
	msgUserDeleted      = "User was deleted successfully."
	msgUserPromoted     = "User was promoted successfully."
	msgPromoteTarget    = "User to promote does not exist."
	msgPromoteForbidden = "'From' user does not exist or is not an administrator."

	msgItemNotFound  = "An item with that ID was not found."
	msgItemNotExists = "Item does not exist."
	msgItemUpdated   = "Item was updated as follows."
	msgItemDeleted   = "Item was deleted successfully."
	msgCacheEmpty    = "Item cache is empty."

	msgInvalidItemID  = "Invalid item ID: %d"
	msgInvalidReceipt = "Invalid receipt."
	msgOrderPlaced    = "Order has been placed as follows. Keep your receipt!"
	msgOrderTooOld    = "Order was placed more than ten minutes ago."
	msgOrderCancelled = "Order has been cancelled successfully."

	msgSessionCreated = "Session created."
)
