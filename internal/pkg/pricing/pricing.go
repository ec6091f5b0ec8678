package pricing

import "github.com/clubshop-app/ClubShop/app/models"

// BuyerContext carries the discount eligibilities a buyer holds at the
// moment of pricing. It is resolved once per request and passed explicitly;
// nothing in this package performs I/O.
type BuyerContext struct {
	UserID        uint
	IsMember      bool
	IsAthlete     bool
	IsCoordinator bool
	IsStaff       bool
}

// EffectivePrice computes the per-unit price of an item for a buyer. A nil
// tier price means no discount for that tier and falls through to the base
// price. Tiers are checked in a fixed order and only ever lower the price;
// the member discount is the one wired through the storefront end to end.
func EffectivePrice(item *models.Item, buyer BuyerContext) float64 {
	if buyer.IsMember && item.MemberPrice != nil {
		return *item.MemberPrice
	}
	if buyer.IsAthlete && item.AthletePrice != nil {
		return *item.AthletePrice
	}
	if buyer.IsCoordinator && item.CoordinatorPrice != nil {
		return *item.CoordinatorPrice
	}
	if buyer.IsStaff && item.StaffPrice != nil {
		return *item.StaffPrice
	}
	return item.Price
}
