package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ariane/internal/service"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp 注册新账号，响应中附带访问令牌。
func (a *API) SignUp(c *gin.Context) {
	var req service.UserInput
	if !bindJSON(c, &req, "注册信息格式错误") {
		return
	}

	user, err := a.users.SignUp(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "注册失败")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// SignIn 使用邮箱和密码登录。
func (a *API) SignIn(c *gin.Context) {
	var req signInRequest
	if !bindJSON(c, &req, "邮箱和密码不能为空") {
		return
	}

	user, err := a.users.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "登录失败")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers 获取用户列表
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "获取用户列表失败")
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser 供已登录用户代为创建账号，响应中不附带新账号的令牌。
func (a *API) CreateUser(c *gin.Context) {
	var req service.UserInput
	if !bindJSON(c, &req, "用户信息格式错误") {
		return
	}

	user, err := a.users.SignUp(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "创建用户失败")
		return
	}
	user.Token = ""
	c.JSON(http.StatusCreated, user)
}

// GetUser 获取单个用户
func (a *API) GetUser(c *gin.Context) {
	user, err := a.users.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err, "获取用户失败")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser 只允许修改自己的资料。
func (a *API) UpdateUser(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	var req service.UserInput
	if !bindJSON(c, &req, "用户信息格式错误") {
		return
	}

	user, err := a.users.Update(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err, "更新用户失败")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser 注销自己的账号，已创建的故事不会被删除。
func (a *API) DeleteUser(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	if err := a.users.Delete(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err, "删除用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "用户已删除"})
}
