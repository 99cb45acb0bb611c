package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
	"github.com/sanctuary-dev/party-roster/backend/internal/repository"
	"github.com/sanctuary-dev/party-roster/backend/internal/roster"
	"github.com/sanctuary-dev/party-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机组队)")
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
				user, err := utils.GenerateRandomUser(cfg.Seed.User.PIN)
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
			slog.Error("请输入合法的组队数量")
		} else {
			// 先获取所有用户，随机挑选队长和队员
			users, err := repo.GetAllUsers()
			if err != nil {
				slog.Error("无法获取所有用户", slog.String("error", err.Error()))
				return
			}
			if len(users) == 0 {
				slog.Error("数据库中没有用户，请先执行 op=1 插入随机用户")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				creator := users[rand.Intn(len(users))]
				party := utils.GenerateRandomParty(creator)

				// 随机让部分用户占用空位
				for _, user := range users {
					if len(user.Characters) == 0 || rand.Intn(3) != 0 {
						continue
					}

					char := user.Characters[rand.Intn(len(user.Characters))]
					key := domain.TeamKey1
					if party.IsTwoTeams && rand.Intn(2) == 0 {
						key = domain.TeamKey2
					}
					// 位置已被占用或用户已在队中时跳过即可
					_ = roster.ClaimSlot(party, key, rand.Intn(domain.TeamSize), user, char)
				}

				if err := repo.CreateParty(party); err != nil {
					slog.Error("无法插入组队", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入组队成功", slog.Int("count", n-cnt))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
