package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机班表模板, 3: 为所有用户插入随机模板分配, 4: 插入基础数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.NewUser.WeeklyQuota)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的班表模板数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				st := utils.GenerateRandomScheduleTemplate()
				if err := repo.CreateScheduleTemplate(st); err != nil {
					slog.Error("无法插入班表模板", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入班表模板成功", slog.Int("count", n-cnt))
		}
	case 3:
		// 先获取所有模板的元数据
		templates, err := repo.GetAllScheduleTemplates()
		if err != nil {
			slog.Error("无法获取所有模板", slog.String("error", err.Error()))
			return
		}
		if len(templates) == 0 {
			slog.Error("数据库中没有模板，请先插入模板")
			return
		}

		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取所有用户", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		startDate := time.Now().Format(utils.DateLayout)
		for _, user := range users {
			// 随机选一个模板
			template := templates[rand.Intn(len(templates))]

			ta := &domain.TemplateAssignment{
				UserID:     user.ID,
				TemplateID: template.ID,
				StartDate:  startDate,
				Priority:   int32(rand.Intn(10)),
				IsActive:   true,
			}
			if err := repo.CreateTemplateAssignment(ta); err != nil {
				slog.Error("无法插入模板分配", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入模板分配成功", slog.Int("count", cnt))
	case 4:
		seed.SeedBaseline(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
