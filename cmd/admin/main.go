package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"atsResume/internal/config"
	"atsResume/internal/database"
	"atsResume/internal/resume"
	"atsResume/internal/store"
)

// admin 是离线检查工具：读取一份简历快照（文件或数据库），输出完整度评分，
// 可选地与职位描述做关键词匹配。
func main() {
	var (
		snapshotPath = flag.String("snapshot", "", "简历快照 JSON 文件（与 --from-db 二选一）")
		fromDB       = flag.Bool("from-db", false, "从 PostgreSQL 快照表读取")
		storeKey     = flag.String("key", "atsResume", "快照存储键")
		jdPath       = flag.String("jd", "", "职位描述文本文件（可选）")
		keywords     = flag.String("keywords", "", "关键词词典 YAML/JSON 文件（可选，默认内置词典）")
		dedupe       = flag.Bool("dedupe", true, "词典去重")
		wordBoundary = flag.Bool("word-boundary", false, "关键词按整词匹配")
		dbHost       = flag.String("db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
		dbPort       = flag.Int("db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
		dbName       = flag.String("db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
		dbUser       = flag.String("db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
		dbPass       = flag.String("db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
		sslMode      = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
	)
	flag.Parse()

	if (*snapshotPath == "") == !*fromDB {
		log.Fatal("exactly one of --snapshot or --from-db is required")
	}

	var (
		data []byte
		err  error
	)
	if *fromDB {
		dbCfg, cfgErr := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
		if cfgErr != nil {
			log.Fatalf("load database config: %v", cfgErr)
		}
		data, err = loadFromDatabase(dbCfg, *storeKey)
	} else {
		data, err = os.ReadFile(*snapshotPath)
	}
	if err != nil {
		log.Fatalf("read snapshot: %v", err)
	}

	doc, err := resume.Decode(data)
	if err != nil {
		log.Fatalf("decode snapshot: %v", err)
	}

	dict := resume.DefaultDictionary(*dedupe)
	if *keywords != "" {
		if dict, err = resume.LoadDictionaryFile(*keywords, *dedupe); err != nil {
			log.Fatalf("load keyword dictionary: %v", err)
		}
	}

	var jd string
	if *jdPath != "" {
		raw, err := os.ReadFile(*jdPath)
		if err != nil {
			log.Fatalf("read job description: %v", err)
		}
		jd = string(raw)
	}

	writeReport(os.Stdout, doc, jd, dict, resume.MatchOptions{WordBoundary: *wordBoundary})
}

func loadFromDatabase(cfg config.DatabaseConfig, key string) ([]byte, error) {
	db, err := database.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, err := store.NewGormPersister(db, key).Load(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, fmt.Errorf("no snapshot stored under key %q", key)
	}
	return data, err
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	host = firstNonEmpty(host, os.Getenv("DATABASE_HOST"), "localhost")
	name = firstNonEmpty(name, os.Getenv("POSTGRES_DB"))
	user = firstNonEmpty(user, os.Getenv("POSTGRES_USER"))
	password = firstNonEmpty(password, os.Getenv("POSTGRES_PASSWORD"))
	sslmode = firstNonEmpty(sslmode, os.Getenv("DATABASE_SSLMODE"), "disable")

	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if port <= 0 {
		port = 5432
	}

	if name == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if user == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
