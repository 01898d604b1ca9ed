package api

import "github.com/rifkidocs/headless-firebase-sub000/pkg/schema"

type collectionList struct {
	Collections []*schema.CollectionConfig `json:"collections"`
}

type fieldTypeList struct {
	FieldTypes []schema.CatalogEntry `json:"fieldTypes"`
}
