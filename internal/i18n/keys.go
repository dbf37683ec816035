// internal/i18n/keys.go
package i18n

// Translation keys used across handlers and services.
const (
	// Auth
	KeyAuthRequired          = "auth.required"
	KeyAuthInvalidToken      = "auth.invalid_token"
	KeyAuthInvalidCreds      = "auth.invalid_credentials"
	KeyAuthEmailTaken        = "auth.email_taken"
	KeyAuthRegisterSuccess   = "auth.register_success"
	KeyAuthResetSent         = "auth.reset_sent"
	KeyAuthResetInvalid      = "auth.reset_invalid"
	KeyAuthResetSuccess      = "auth.reset_success"
	KeyAuthOTPSent           = "auth.otp_sent"
	KeyAuthOTPInvalid        = "auth.otp_invalid"
	KeyAuthAccountNotFound   = "auth.account_not_found"
	KeyAdminAccessDenied     = "admin.access_denied"
	KeySellerAccessDenied    = "seller.access_denied"
	KeyRoleChangeDenied      = "user.role_change_denied"

	// Catalog
	KeyProductNotFound    = "product.not_found"
	KeyProductOutOfStock  = "product.out_of_stock"
	KeyProductNotYours    = "product.not_yours"
	KeyCategoryNotFound   = "category.not_found"
	KeyCategorySlugTaken  = "category.slug_taken"

	// Cart / wishlist
	KeyCartNotFound        = "cart.not_found"
	KeyCartItemNotFound    = "cart.item_not_found"
	KeyCartStockExceeded   = "cart.stock_exceeded"
	KeyWishlistDuplicate   = "wishlist.duplicate"
	KeyWishlistNotFound    = "wishlist.item_not_found"

	// Orders
	KeyOrderNotFound         = "order.not_found"
	KeyOrderEmpty            = "order.empty"
	KeyOrderAccessDenied     = "order.access_denied"
	KeyOrderBadTransition    = "order.bad_transition"
	KeyOrderAlreadyTerminal  = "order.already_terminal"
	KeyOrderPriceMismatch    = "order.price_mismatch"
	KeyOrderStockConflict    = "order.stock_conflict"

	// Payments
	KeyPaymentFailed         = "payment.failed"
	KeyPaymentAlreadyPaid    = "payment.already_paid"
	KeyPaymentAmountMismatch = "payment.amount_mismatch"
	KeyPaymentBalanceLow     = "payment.balance_low"
	KeyPaymentBadSignature   = "payment.bad_signature"

	// Receipts
	KeyReceiptNotFound     = "receipt.not_found"
	KeyReceiptRenderFailed = "receipt.render_failed"

	// Generic validation
	KeyValidationInvalid = "validation.invalid"
)
