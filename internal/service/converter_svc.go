package service

import (
	"errors"

	"gorm.io/datatypes"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/pkg/shopee"
)

// ErrInvalidEscrow 结算数据缺少订单号
var ErrInvalidEscrow = errors.New("结算数据无效")

// ToOrderModel 订单详情 -> orders 行
func ToOrderModel(d *shopee.OrderDetail, shopID int64) *model.Order {
	return &model.Order{
		ShopID:  shopID,
		OrderSn: d.OrderSn,

		BuyerUserID:   d.BuyerUserID,
		BuyerUsername: d.BuyerUsername,

		OrderStatus:    d.OrderStatus,
		CreateTime:     d.CreateTime,
		PayTime:        d.PayTime,
		UpdateTime:     d.UpdateTime,
		ShipByDate:     d.ShipByDate,
		PickupDoneTime: d.PickupDoneTime,
		DaysToShip:     d.DaysToShip,

		Currency:                   d.Currency,
		TotalAmount:                d.TotalAmount,
		EstimatedShippingFee:       d.EstimatedShippingFee,
		ActualShippingFeeConfirmed: d.ActualShippingFeeConfirmed,
		Cod:                        d.Cod,
		PaymentMethod:              d.PaymentMethod,

		ShippingCarrier:           d.ShippingCarrier,
		FulfillmentFlag:           d.FulfillmentFlag,
		OrderChargeableWeightGram: d.OrderChargeableWeightGram,

		MessageToSeller: d.MessageToSeller,
		Note:            d.Note,
		NoteUpdateTime:  d.NoteUpdateTime,

		CancelBy:     d.CancelBy,
		CancelReason: d.CancelReason,

		// 仅在首次插入时生效，冲突更新不覆盖
		DocumentStatus: model.DocumentStatusPending,
	}
}

// ToOrderItemModels 订单商品 -> order_items 行
func ToOrderItemModels(d *shopee.OrderDetail) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(d.ItemList))
	for _, it := range d.ItemList {
		items = append(items, model.OrderItem{
			OrderSn:     d.OrderSn,
			OrderItemID: it.OrderItemID,
			ModelID:     it.ModelID,

			ItemID:    it.ItemID,
			ItemName:  it.ItemName,
			ItemSku:   it.ItemSku,
			ModelName: it.ModelName,
			ModelSku:  it.ModelSku,
			ImageURL:  it.ImageInfo.ImageURL,

			ModelQuantityPurchased: it.ModelQuantityPurchased,
			ModelOriginalPrice:     it.ModelOriginalPrice,
			ModelDiscountedPrice:   it.ModelDiscountedPrice,
			Wholesale:              it.Wholesale,
			Weight:                 it.Weight,

			AddOnDeal:        it.AddOnDeal,
			MainItem:         it.MainItem,
			AddOnDealID:      it.AddOnDealID,
			PromotionType:    it.PromotionType,
			PromotionID:      it.PromotionID,
			PromotionGroupID: it.PromotionGroupID,
		})
	}
	return items
}

// ToLogisticModels 包裹 -> logistic 行，收件人取自订单
func ToLogisticModels(d *shopee.OrderDetail, shopID int64) []model.Logistic {
	addr := d.RecipientAddress
	list := make([]model.Logistic, 0, len(d.PackageList))
	for _, pkg := range d.PackageList {
		if pkg.PackageNumber == "" {
			continue
		}
		list = append(list, model.Logistic{
			PackageNumber: pkg.PackageNumber,
			ShopID:        shopID,
			OrderSn:       d.OrderSn,

			LogisticsStatus:            pkg.LogisticsStatus,
			ShippingCarrier:            pkg.ShippingCarrier,
			ParcelChargeableWeightGram: pkg.ParcelChargeableWeightGram,

			RecipientName:        addr.Name,
			RecipientPhone:       addr.Phone,
			RecipientTown:        addr.Town,
			RecipientDistrict:    addr.District,
			RecipientCity:        addr.City,
			RecipientState:       addr.State,
			RecipientRegion:      addr.Region,
			RecipientZipcode:     addr.Zipcode,
			RecipientFullAddress: addr.FullAddress,
		})
	}
	return list
}

// ToEscrowModel 结算明细 -> order_escrow 行
// order_income 缺失时所有金额为 NULL，调整后金额为 0
func ToEscrowModel(e *shopee.EscrowDetail, shopID int64) (*model.OrderEscrow, error) {
	if e == nil || e.OrderSn == "" {
		return nil, ErrInvalidEscrow
	}
	row := &model.OrderEscrow{
		OrderSn: e.OrderSn,
		ShopID:  shopID,
	}
	income := e.OrderIncome
	if income == nil {
		return row, nil
	}
	row.EscrowAmount = income.EscrowAmount
	row.BuyerTotalAmount = income.BuyerTotalAmount
	row.OriginalPrice = income.OriginalPrice
	row.SellerDiscount = income.SellerDiscount
	row.ShopeeDiscount = income.ShopeeDiscount
	row.VoucherFromSeller = income.VoucherFromSeller
	row.CommissionFee = income.CommissionFee
	row.ServiceFee = income.ServiceFee
	row.SellerTransactionFee = income.SellerTransactionFee
	row.ActualShippingFee = income.ActualShippingFee
	row.AmsCommissionFee = income.OrderAmsCommissionFee
	row.BuyerPaymentMethod = income.BuyerPaymentMethod
	if income.EscrowAmountAfterAdjustment.Valid {
		row.EscrowAmountAfterAdjustment = income.EscrowAmountAfterAdjustment.Decimal
	}
	return row, nil
}

// ToBookingModel 预约单详情 -> booking_orders 行
func ToBookingModel(d *shopee.BookingDetail, shopID int64) model.BookingOrder {
	return model.BookingOrder{
		ShopID:    shopID,
		BookingSn: d.BookingSn,
		OrderSn:   d.OrderSn,
		Region:    d.Region,

		BookingStatus:   d.BookingStatus,
		MatchStatus:     d.MatchStatus,
		ShippingCarrier: d.ShippingCarrier,
		CreateTime:      d.CreateTime,
		UpdateTime:      d.UpdateTime,

		RecipientAddress: jsonOrNull(d.RecipientAddress),
		ItemList:         jsonOrNull(d.ItemList),

		Dropshipper:      d.Dropshipper,
		DropshipperPhone: d.DropshipperPhone,
		CancelBy:         d.CancelBy,
		CancelReason:     d.CancelReason,
		FulfillmentFlag:  d.FulfillmentFlag,
		PickupDoneTime:   d.PickupDoneTime,

		DocumentStatus: model.DocumentStatusPending,
	}
}

func jsonOrNull(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
