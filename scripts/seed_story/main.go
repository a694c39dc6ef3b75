package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ariane/internal/assets"
	"github.com/ariane/internal/auth"
	"github.com/ariane/internal/config"
	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
	"github.com/ariane/internal/service"
)

const (
	demoEmail    = "demo@ariane.local"
	demoPassword = "ariane-demo"
)

// 创建演示账号以及一个三页的示例故事：A --Open the door--> B --Enter--> C
func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal("存储初始化失败:", err)
	}
	defer store.Close(ctx)

	files, err := assets.NewFileStore(cfg.UploadDir, cfg.UploadURLPath)
	if err != nil {
		log.Fatal("上传目录初始化失败:", err)
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, nil)
	if err != nil {
		log.Fatal("令牌签发器初始化失败:", err)
	}

	users := service.NewUserService(store.Users, issuer, nil)
	stories := service.NewStoryService(store, files, nil)
	pages := service.NewPageService(store, files, nil)
	choices := service.NewChoiceService(store)

	user, err := users.SignUp(ctx, service.UserInput{
		FirstName: "Ariane",
		LastName:  "Demo",
		UserName:  "ariane",
		Email:     demoEmail,
		Password:  demoPassword,
	})
	if errors.Is(err, entity.ErrEmailTaken) {
		user, err = users.SignIn(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		log.Fatal("创建演示用户失败:", err)
	}

	story, err := stories.Create(ctx, user.ID, service.StoryInput{
		Title:   "Le labyrinthe",
		Summary: "Un fil rouge à travers trois salles.",
	})
	if err != nil {
		log.Fatal("创建故事失败:", err)
	}

	a := mustPage(ctx, pages, story.ID, service.PageInput{Title: "A", Text: "Vous vous réveillez devant une porte close.", First: true})
	b := mustPage(ctx, pages, story.ID, service.PageInput{Title: "B", Text: "Un long couloir s’étire devant vous."})
	c := mustPage(ctx, pages, story.ID, service.PageInput{Title: "C", Text: "La lumière du jour. Vous êtes sorti.", End: true})

	if _, err := choices.Create(ctx, a.ID, service.ChoiceInput{SendToPageID: b.ID, Title: "Open the door"}); err != nil {
		log.Fatal("创建选项失败:", err)
	}
	if _, err := choices.Create(ctx, b.ID, service.ChoiceInput{SendToPageID: c.ID, Title: "Enter"}); err != nil {
		log.Fatal("创建选项失败:", err)
	}
	if _, err := stories.RefreshStats(ctx, user.ID, story.ID); err != nil {
		log.Fatal("更新统计失败:", err)
	}

	fmt.Println("示例故事创建成功")
	fmt.Println("邮箱:", demoEmail)
	fmt.Println("密码:", demoPassword)
	fmt.Println("用户ID:", user.ID)
	fmt.Println("故事ID:", story.ID)
	fmt.Println("令牌:", user.Token)
}

func mustPage(ctx context.Context, pages *service.PageService, storyID string, input service.PageInput) *entity.Page {
	page, err := pages.Create(ctx, storyID, input)
	if err != nil {
		log.Fatal("创建页面失败:", err)
	}
	return page
}
