package db

import "github.com/ariane/internal/entity"

// User 定义了用户模型
type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	FirstName string
	LastName  string
	UserName  string
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Salt      string `gorm:"not null"`
}

func UserFromEntity(u *entity.User) User {
	return User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Email:     u.Email,
		Password:  u.Password,
		Salt:      u.Salt,
	}
}

func (u *User) ToEntity() *entity.User {
	return &entity.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Email:     u.Email,
		Password:  u.Password,
		Salt:      u.Salt,
	}
}
