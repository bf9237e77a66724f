package handlers

import "github.com/gin-gonic/gin"

// Routes bundles the handlers and middleware mounted on the HTTP router.
type Routes struct {
	Auth      gin.HandlerFunc
	SendLimit gin.HandlerFunc
	Internal  gin.HandlerFunc

	Accounts      *AccountHandler
	Profiles      *ProfileHandler
	Connections   *ConnectionHandler
	Conversations *ConversationHandler
	Safety        *SafetyHandler
	Gatherings    *GatheringHandler

	// ConversationWS authenticates on its own since browsers cannot set
	// headers on the upgrade request.
	ConversationWS gin.HandlerFunc
}

// RegisterRoutes mounts the public and internal API.
func RegisterRoutes(router gin.IRouter, r Routes) {
	sendLimit := r.SendLimit
	if sendLimit == nil {
		sendLimit = func(c *gin.Context) { c.Next() }
	}

	api := router.Group("/", r.Auth)
	api.GET("/me", r.Accounts.Me)

	api.GET("/profiles", r.Profiles.Browse)
	api.PUT("/profiles/me", r.Profiles.Save)
	api.POST("/profiles/me/photos", r.Profiles.AttachPhoto)
	api.GET("/profiles/:user_id", r.Profiles.Get)

	api.POST("/connections", r.Connections.Propose)
	api.GET("/connections", r.Connections.List)
	api.GET("/connections/status/:user_id", r.Connections.Status)
	api.POST("/connections/:id/respond", r.Connections.Respond)
	api.DELETE("/connections/:id", r.Connections.Withdraw)

	api.POST("/conversations", r.Conversations.RequestJoin)
	api.GET("/conversations", r.Conversations.Inbox)
	api.GET("/conversations/:id/messages", r.Conversations.ListMessages)
	api.POST("/conversations/:id/messages", sendLimit, r.Conversations.SendMessage)
	api.POST("/conversations/:id/read", r.Conversations.MarkAsRead)
	api.POST("/conversations/:id/accept", r.Conversations.Accept)
	api.POST("/conversations/:id/decline", r.Conversations.Decline)

	api.POST("/blocks", r.Safety.Block)
	api.GET("/blocks", r.Safety.ListBlocked)
	api.DELETE("/blocks/:user_id", r.Safety.Unblock)
	api.POST("/reports", r.Safety.Report)

	api.POST("/gatherings", r.Gatherings.Create)
	api.GET("/gatherings", r.Gatherings.List)

	if r.ConversationWS != nil {
		router.GET("/ws/conversations/:id", r.ConversationWS)
	}

	internal := router.Group("/internal", r.Internal)
	internal.POST("/identity/deleted", r.Accounts.IdentityDeleted)
	internal.POST("/profiles/:user_id/verified", r.Profiles.SetVerified)
}
