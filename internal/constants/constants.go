package constants

const (
	// ContextKeyUserID is the gin context key holding the authenticated user's ID.
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the authenticated *models.User.
	ContextKeyUser = "user"
	// ContextKeyToken holds the raw bearer token of the current request.
	ContextKeyToken = "token"

	TokenType = "bearer"

	MinPasswordLength       = 8
	GeneratedPasswordLength = 16
	TokenBytes              = 32
	SaltBytes               = 16

	MinCommentLength = 1
	MaxCommentLength = 5000
	MaxNameLength    = 200

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)
