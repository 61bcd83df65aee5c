package repository

import "go.mongodb.org/mongo-driver/v2/bson"

// archivedFilter はarchivedの3値フィルタをストアのフィルタへ変換する。
// nilはフィルタなし（全件）を意味する。
func archivedFilter(archived *bool) bson.M {
	if archived == nil {
		return bson.M{}
	}
	return bson.M{"archived": *archived}
}
