package db

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID 在记录没有主键时生成一个新的 UUID。
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate hooks keep every table keyed by string UUIDs.

func (s *Story) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (p *Page) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (c *Choice) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
