// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAdminAccessDenied      = "auth.admin_access_denied"

	// Users / wishlist
	KeyUserNotFound      = "user.not_found"
	KeyWishlistAdded     = "wishlist.added"
	KeyWishlistRemoved   = "wishlist.removed"
	KeyWishlistDuplicate = "wishlist.duplicate"
	KeyWishlistProductID = "wishlist.product_id_required"

	// Products / reviews
	KeyProductCreated     = "product.created"
	KeyProductUpdated     = "product.updated"
	KeyProductDeleted     = "product.deleted"
	KeyProductNotFound    = "product.not_found"
	KeyProductHasOrders   = "product.has_orders"
	KeyReviewAdded        = "review.added"
	KeyReviewDuplicate    = "review.duplicate"
	KeyReviewNotPurchased = "review.not_purchased"

	// Cart
	KeyCartCleared   = "cart.cleared"
	KeyCartItemAdded = "cart.item_added"
	KeyCartEmpty     = "cart.empty"

	// Orders / checkout
	KeyOrderCreated       = "order.created"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderDelivered     = "order.delivered"
	KeyCheckoutInProgress = "checkout.in_progress"
	KeyCheckoutAmount     = "checkout.amount_mismatch"

	// Payments
	KeyPaymentFailed     = "payment.failed"
	KeyPaymentUnverified = "payment.unverified"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
