package memory

import (
	"github.com/google/uuid"
	"github.com/tournevent/shipping/pkg/fulfillment"
)

// Stores groups the three in-memory stores.
type Stores struct {
	Sites           *SiteStore
	Fulfillment     *FulfillmentStore
	ShippingMethods *ShippingMethodStore
}

// Seeded returns stores holding demo sites: adidas-US supports every
// fulfillment type, adidas-CA home delivery only.
func Seeded() *Stores {
	s := &Stores{
		Sites: NewSiteStore(
			fulfillment.SiteID{ID: 1, Name: "adidas-US", EnterpriseCode: "ADIDAS_US"},
			fulfillment.SiteID{ID: 2, Name: "adidas-CA", EnterpriseCode: "ADIDAS_CA"},
		),
		Fulfillment:     NewFulfillmentStore(),
		ShippingMethods: NewShippingMethodStore(),
	}

	homeDelivery := fulfillment.FulfillmentOption{
		FulfillmentType: fulfillment.TypeHomeDelivery,
		Name:            map[string]string{"en_US": "Home Delivery", "fr_CA": "Livraison à domicile"},
		Description:     map[string]string{"en_US": "Delivered to your door", "fr_CA": "Livré à votre porte"},
	}
	s.Fulfillment.Put(1,
		homeDelivery,
		fulfillment.FulfillmentOption{
			FulfillmentType: fulfillment.TypeClickAndCollect,
			Name:            map[string]string{"en_US": "Collect in Store"},
			Description:     map[string]string{"en_US": "Pick up your order in one of our stores"},
		},
		fulfillment.FulfillmentOption{
			FulfillmentType: fulfillment.TypePUDO,
			Name:            map[string]string{"en_US": "Pickup Point"},
			Description:     map[string]string{"en_US": "Collect your order at a pickup point"},
		},
	)
	s.Fulfillment.Put(2, homeDelivery)

	s.ShippingMethods.Put(fulfillment.ShippingMethods{
		ShippingMethodID: uuid.MustParse("5a4c1f0e-3a8d-4c59-9d3e-2f8f5f6b7c01"),
		SiteID:           1,
		FulfillmentType:  fulfillment.TypeClickAndCollect,
		Methods: []fulfillment.ShippingMethod{
			{ID: 10, Code: "CNC_STANDARD", Name: "Standard collect", Carrier: "STORE"},
			{ID: 11, Code: "CNC_EXPRESS", Name: "Express collect", Carrier: "STORE"},
		},
	})
	return s
}
