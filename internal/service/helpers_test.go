package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
)

// ==================== 测试辅助 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

var testLog = zap.NewNop()

// staticTokens 固定令牌
type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) GetValidAccessToken(context.Context, int64) (string, error) {
	return s.token, s.err
}

// fakeSettings 固定设置快照
type fakeSettings struct {
	userID  string
	snap    *model.SettingsSnapshot
	userErr error
	snapErr error
}

func (f *fakeSettings) ResolveUserID(context.Context, int64) (string, error) {
	return f.userID, f.userErr
}

func (f *fakeSettings) GetSnapshot(context.Context, string) (*model.SettingsSnapshot, error) {
	return f.snap, f.snapErr
}

// recordingNotifier 记录投递的事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	users  []string
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, userID string, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.users = append(r.users, userID)
	r.events = append(r.events, ev)
	return nil
}

// noSleep 记录等待时长，不真正等待
type noSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (n *noSleep) Sleep(_ context.Context, d time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.waits = append(n.waits, d)
	return nil
}
