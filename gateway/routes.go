package gateway

import (
	"chat-rooms/auth"

	"github.com/gin-gonic/gin"
)

// Router wires the REST surface and the WebSocket endpoint. Everything but
// register, login and the upgrade (which authenticates via query token) sits
// behind the bearer middleware.
func (g *Gateway) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", g.HandleWS)

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", g.Register)
	users.POST("/login", g.Login)

	usersAuth := users.Group("", auth.Middleware(g.tokens))
	usersAuth.GET("/userProfile", g.GetProfile)
	usersAuth.PUT("/saveUserProfile", g.SaveProfile)
	usersAuth.GET("/rooms", g.ListUserRooms)
	usersAuth.GET("/:roomId", g.HasRoom)

	rooms := api.Group("/rooms", auth.Middleware(g.tokens))
	rooms.POST("/create", g.CreateRoom)
	rooms.GET("/join", g.JoinRoom)
	rooms.GET("/:roomId", g.GetRoom)
	rooms.DELETE("/:roomId", g.DeleteRoom)
	rooms.PUT("/:roomId", g.RenameRoom)
	rooms.GET("/:roomId/users", g.GetRoomUsers)
	rooms.GET("/:roomId/users/all", g.GetAllRoomUsers)
	rooms.POST("/:roomId/invite", g.CreateInvitation)
	rooms.GET("/:roomId/leave", g.LeaveRoom)

	messages := api.Group("/messages", auth.Middleware(g.tokens))
	messages.GET("/:roomId/messages", g.GetMessages)
	messages.GET("/:roomId/search", g.SearchMessages)

	return r
}
