package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1_202610/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	return n
}

// ==================== OrderRepository ====================

func TestOrderRepo_UpsertOrderIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := &model.Order{
		ShopID:      100,
		OrderSn:     "O1",
		OrderStatus: model.OrderStatusUnpaid,
		TotalAmount: decimal.RequireFromString("150000"),
		UpdateTime:  1000,
	}
	if err := repo.UpsertOrder(ctx, order); err != nil {
		t.Fatalf("UpsertOrder() error = %v", err)
	}

	again := &model.Order{
		ShopID:      100,
		OrderSn:     "O1",
		OrderStatus: model.OrderStatusReadyToShip,
		TotalAmount: decimal.RequireFromString("150000"),
		UpdateTime:  2000,
	}
	if err := repo.UpsertOrder(ctx, again); err != nil {
		t.Fatalf("UpsertOrder() second error = %v", err)
	}

	if n := countRows(t, db, &model.Order{}); n != 1 {
		t.Fatalf("期望 1 行, 实际 %d", n)
	}
	got, err := repo.GetByOrderSn(ctx, 100, "O1")
	if err != nil {
		t.Fatalf("GetByOrderSn() error = %v", err)
	}
	if got.OrderStatus != model.OrderStatusReadyToShip || got.UpdateTime != 2000 {
		t.Errorf("状态未更新: %s / %d", got.OrderStatus, got.UpdateTime)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("150000")) {
		t.Errorf("金额 = %s", got.TotalAmount)
	}
}

func TestOrderRepo_UpsertKeepsDocumentColumns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if err := repo.UpsertOrder(ctx, &model.Order{ShopID: 1, OrderSn: "O2", OrderStatus: model.OrderStatusProcessed}); err != nil {
		t.Fatalf("UpsertOrder() error = %v", err)
	}
	got, _ := repo.GetByOrderSn(ctx, 1, "O2")
	if got.DocumentStatus != model.DocumentStatusPending {
		t.Errorf("默认面单状态 = %q", got.DocumentStatus)
	}

	if n, err := repo.UpdateTrackingAndDocument(ctx, 1, "O2", "TN-1", model.DocumentStatusReady); err != nil || n != 1 {
		t.Fatalf("UpdateTrackingAndDocument() = %d, %v", n, err)
	}

	// 同步再次写入，不带运单号和面单状态
	if err := repo.UpsertOrder(ctx, &model.Order{ShopID: 1, OrderSn: "O2", OrderStatus: model.OrderStatusShipped}); err != nil {
		t.Fatalf("UpsertOrder() error = %v", err)
	}

	got, _ = repo.GetByOrderSn(ctx, 1, "O2")
	if got.TrackingNumber != "TN-1" {
		t.Errorf("运单号被覆盖: %q", got.TrackingNumber)
	}
	if got.DocumentStatus != model.DocumentStatusReady {
		t.Errorf("面单状态被覆盖: %q", got.DocumentStatus)
	}
	if got.OrderStatus != model.OrderStatusShipped {
		t.Errorf("订单状态 = %q", got.OrderStatus)
	}
}

func TestOrderRepo_PartialUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if err := repo.UpsertOrder(ctx, &model.Order{ShopID: 1, OrderSn: "O3", OrderStatus: model.OrderStatusShipped, BuyerUsername: "budi"}); err != nil {
		t.Fatalf("UpsertOrder() error = %v", err)
	}

	n, err := repo.UpdateStatusOnly(ctx, 1, "O3", model.OrderStatusToReturn, 3000)
	if err != nil || n != 1 {
		t.Fatalf("UpdateStatusOnly() = %d, %v", n, err)
	}
	status, err := repo.GetStatus(ctx, 1, "O3")
	if err != nil || status != model.OrderStatusToReturn {
		t.Fatalf("GetStatus() = %q, %v", status, err)
	}
	got, _ := repo.GetByOrderSn(ctx, 1, "O3")
	if got.BuyerUsername != "budi" {
		t.Errorf("其他字段被改写: %q", got.BuyerUsername)
	}

	// 订单不存在时不插入
	n, err = repo.UpdateStatusOnly(ctx, 1, "MISSING", model.OrderStatusToReturn, 1)
	if err != nil || n != 0 {
		t.Errorf("UpdateStatusOnly(missing) = %d, %v", n, err)
	}
	if _, err := repo.GetStatus(ctx, 1, "MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("GetStatus(missing) error = %v", err)
	}

	if n, err := repo.UpdateTrackingNumber(ctx, 1, "O3", "TN-9"); err != nil || n != 1 {
		t.Fatalf("UpdateTrackingNumber() = %d, %v", n, err)
	}
	got, _ = repo.GetByOrderSn(ctx, 1, "O3")
	if got.TrackingNumber != "TN-9" || got.DocumentStatus != model.DocumentStatusPending {
		t.Errorf("运单号更新结果: %q / %q", got.TrackingNumber, got.DocumentStatus)
	}

	if n, err := repo.UpdateDocumentStatus(ctx, 1, "O3", model.DocumentStatusFailed); err != nil || n != 1 {
		t.Fatalf("UpdateDocumentStatus() = %d, %v", n, err)
	}
}

func TestOrderRepo_UpsertItemsAndLogistics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	items := []model.OrderItem{
		{OrderSn: "O1", OrderItemID: 11, ModelID: 0, ItemName: "Kaos", ModelQuantityPurchased: 1},
		{OrderSn: "O1", OrderItemID: 11, ModelID: 5, ItemName: "Kaos", ModelQuantityPurchased: 2},
	}
	if err := repo.UpsertItems(ctx, items); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}
	// 同步重新构造的记录不带主键
	again := []model.OrderItem{{OrderSn: "O1", OrderItemID: 11, ModelID: 0, ItemName: "Kaos", ModelQuantityPurchased: 3}}
	if err := repo.UpsertItems(ctx, again); err != nil {
		t.Fatalf("UpsertItems() again error = %v", err)
	}
	if err := repo.UpsertItems(ctx, nil); err != nil {
		t.Fatalf("UpsertItems(nil) error = %v", err)
	}
	if n := countRows(t, db, &model.OrderItem{}); n != 2 {
		t.Fatalf("期望 2 行, 实际 %d", n)
	}
	var item model.OrderItem
	db.Where("order_item_id = ? AND model_id = ?", 11, 0).First(&item)
	if item.ModelQuantityPurchased != 3 {
		t.Errorf("数量 = %d", item.ModelQuantityPurchased)
	}

	logistics := []model.Logistic{{PackageNumber: "PKG1", ShopID: 1, OrderSn: "O1", LogisticsStatus: "LOGISTICS_READY"}}
	if err := repo.UpsertLogistics(ctx, logistics); err != nil {
		t.Fatalf("UpsertLogistics() error = %v", err)
	}
	logistics = []model.Logistic{{PackageNumber: "PKG1", ShopID: 1, OrderSn: "O1", LogisticsStatus: "LOGISTICS_PICKUP_DONE"}}
	if err := repo.UpsertLogistics(ctx, logistics); err != nil {
		t.Fatalf("UpsertLogistics() again error = %v", err)
	}
	var l model.Logistic
	db.Where("package_number = ?", "PKG1").First(&l)
	if l.LogisticsStatus != "LOGISTICS_PICKUP_DONE" {
		t.Errorf("物流状态 = %q", l.LogisticsStatus)
	}
	if n := countRows(t, db, &model.Logistic{}); n != 1 {
		t.Errorf("期望 1 行, 实际 %d", n)
	}
}

func TestOrderRepo_UpsertEscrowNullIncome(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	if err := repo.UpsertEscrow(ctx, &model.OrderEscrow{OrderSn: "O1", ShopID: 1}); err != nil {
		t.Fatalf("UpsertEscrow() error = %v", err)
	}
	var e model.OrderEscrow
	db.Where("order_sn = ?", "O1").First(&e)
	if e.EscrowAmount.Valid || e.CommissionFee.Valid {
		t.Errorf("期望 NULL, 实际 %+v", e.EscrowAmount)
	}

	if err := repo.UpsertEscrow(ctx, &model.OrderEscrow{
		OrderSn:      "O1",
		ShopID:       1,
		EscrowAmount: decimal.NewNullDecimal(decimal.RequireFromString("90000")),
	}); err != nil {
		t.Fatalf("UpsertEscrow() again error = %v", err)
	}
	db.Where("order_sn = ?", "O1").First(&e)
	if !e.EscrowAmount.Valid || !e.EscrowAmount.Decimal.Equal(decimal.RequireFromString("90000")) {
		t.Errorf("结算金额 = %+v", e.EscrowAmount)
	}
	if n := countRows(t, db, &model.OrderEscrow{}); n != 1 {
		t.Errorf("期望 1 行, 实际 %d", n)
	}
}

// ==================== BookingRepository ====================

func TestBookingRepo_UpsertAndTracking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	bookings := []model.BookingOrder{{
		ShopID:           1,
		BookingSn:        "B1",
		BookingStatus:    "READY_TO_SHIP",
		RecipientAddress: datatypes.JSON(`{"name":"Budi"}`),
		ItemList:         datatypes.JSON(`[]`),
	}}
	if err := repo.UpsertBookings(ctx, bookings); err != nil {
		t.Fatalf("UpsertBookings() error = %v", err)
	}

	if n, err := repo.UpdateTrackingNumber(ctx, 1, "B1", "TRK-1"); err != nil || n != 1 {
		t.Fatalf("UpdateTrackingNumber() = %d, %v", n, err)
	}

	bookings = []model.BookingOrder{{
		ShopID:           1,
		BookingSn:        "B1",
		BookingStatus:    "SHIPPED",
		RecipientAddress: datatypes.JSON(`{"name":"Budi"}`),
		ItemList:         datatypes.JSON(`[]`),
	}}
	if err := repo.UpsertBookings(ctx, bookings); err != nil {
		t.Fatalf("UpsertBookings() again error = %v", err)
	}

	got, err := repo.GetByBookingSn(ctx, 1, "B1")
	if err != nil {
		t.Fatalf("GetByBookingSn() error = %v", err)
	}
	if got.BookingStatus != "SHIPPED" {
		t.Errorf("状态 = %q", got.BookingStatus)
	}
	if got.TrackingNumber != "TRK-1" {
		t.Errorf("运单号被覆盖: %q", got.TrackingNumber)
	}
	if got.DocumentStatus != model.DocumentStatusPending {
		t.Errorf("面单状态 = %q", got.DocumentStatus)
	}
	if n := countRows(t, db, &model.BookingOrder{}); n != 1 {
		t.Errorf("期望 1 行, 实际 %d", n)
	}
}

// ==================== ShopRepository ====================

func TestShopRepo_OwnerAndTokens(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShopRepository(db)
	ctx := context.Background()

	db.Create(&model.ShopeeToken{ShopID: 100, UserID: "u1", ShopName: "Toko A", AccessToken: "a", RefreshToken: "r", IsActive: true})
	db.Create(&model.ShopeeToken{ShopID: 200, UserID: "u1", ShopName: "Toko B", IsActive: true})

	owner, err := repo.GetOwnerUserID(ctx, 100)
	if err != nil || owner != "u1" {
		t.Fatalf("GetOwnerUserID() = %q, %v", owner, err)
	}
	if _, err := repo.GetOwnerUserID(ctx, 999); !errors.Is(err, ErrShopNotFound) {
		t.Errorf("GetOwnerUserID(missing) error = %v", err)
	}

	shops, err := repo.ListByUserID(ctx, "u1")
	if err != nil || len(shops) != 2 {
		t.Fatalf("ListByUserID() = %d, %v", len(shops), err)
	}

	expiry := time.Now().Add(4 * time.Hour).Truncate(time.Second)
	if err := repo.UpdateToken(ctx, 100, "a2", "r2", expiry); err != nil {
		t.Fatalf("UpdateToken() error = %v", err)
	}
	shop, err := repo.GetByShopID(ctx, 100)
	if err != nil {
		t.Fatalf("GetByShopID() error = %v", err)
	}
	if shop.AccessToken != "a2" || shop.RefreshToken != "r2" || !shop.AccessTokenExpiry.Equal(expiry) {
		t.Errorf("令牌未更新: %+v", shop)
	}

	if err := repo.Deactivate(ctx, 200); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if _, err := repo.GetByShopID(ctx, 200); !errors.Is(err, ErrShopNotFound) {
		t.Errorf("停用后 GetByShopID() error = %v", err)
	}
	active, _ := repo.ListActiveShops(ctx)
	if len(active) != 1 || active[0].ShopID != 100 {
		t.Errorf("ListActiveShops() = %+v", active)
	}
}

// ==================== SettingsRepository ====================

func TestSettingsRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	p, err := repo.GetPengaturan(ctx, "nobody")
	if err != nil || p != nil {
		t.Fatalf("GetPengaturan(missing) = %+v, %v", p, err)
	}

	db.Create(&model.Pengaturan{UserID: "u1", AutoShip: true, AutoShipInterval: 30})
	db.Create(&model.AutoShipChat{ShopID: 2, UserID: "u1", StatusShip: true})
	db.Create(&model.AutoShipChat{ShopID: 1, UserID: "u1", StatusChat: true})

	p, err = repo.GetPengaturan(ctx, "u1")
	if err != nil || p == nil || !p.AutoShip || p.AutoShipInterval != 30 {
		t.Fatalf("GetPengaturan() = %+v, %v", p, err)
	}

	rows, err := repo.ListAutoShipChat(ctx, "u1")
	if err != nil || len(rows) != 2 || rows[0].ShopID != 1 {
		t.Fatalf("ListAutoShipChat() = %+v, %v", rows, err)
	}

	plan, err := repo.GetActivePlanName(ctx, "u1")
	if err != nil || plan != "" {
		t.Fatalf("无订阅时 GetActivePlanName() = %q, %v", plan, err)
	}

	basic := model.SubscriptionPlan{Name: "Basic"}
	admin := model.SubscriptionPlan{Name: model.PremiumPlanName}
	db.Create(&basic)
	db.Create(&admin)
	now := time.Now()
	db.Create(&model.UserSubscription{UserID: "u1", PlanID: basic.ID, Status: model.SubscriptionStatusActive, CreatedAt: now.Add(-time.Hour)})
	db.Create(&model.UserSubscription{UserID: "u1", PlanID: admin.ID, Status: model.SubscriptionStatusActive, CreatedAt: now})
	db.Create(&model.UserSubscription{UserID: "u1", PlanID: basic.ID, Status: model.SubscriptionStatusExpired, CreatedAt: now.Add(time.Hour)})

	plan, err = repo.GetActivePlanName(ctx, "u1")
	if err != nil || plan != model.PremiumPlanName {
		t.Errorf("GetActivePlanName() = %q, %v", plan, err)
	}
}

// ==================== NotificationRepository ====================

func TestNotificationRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	list, err := repo.ListRecent(ctx, nil, 10)
	if err != nil || list != nil {
		t.Fatalf("ListRecent(no shops) = %v, %v", list, err)
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		n := &model.ShopeeNotification{
			ShopID:           1,
			NotificationType: model.NotificationShopPenalty,
			Data:             datatypes.JSON(`{}`),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	db.Create(&model.ShopeeNotification{ShopID: 2, NotificationType: model.NotificationViolation, Data: datatypes.JSON(`{}`)})

	list, err = repo.ListRecent(ctx, []int64{1}, 2)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListRecent() = %d, %v", len(list), err)
	}
	if !list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Errorf("未按时间倒序")
	}

	if err := repo.MarkProcessed(ctx, list[0].ID); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	var got model.ShopeeNotification
	db.First(&got, list[0].ID)
	if !got.Processed {
		t.Errorf("未标记为已处理")
	}
}
