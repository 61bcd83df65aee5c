package repository

import "go.mongodb.org/mongo-driver/v2/bson"

// resolveID は外部から渡されたリストIDをストアの検索キーへ変換する。
// 24桁の16進文字列はObjectIDとしてデコードし、それ以外は生文字列のまま返す。
// 不正な形式でも事前に拒否せず、ストアの検索結果で不在を報告させる。
func resolveID(external string) any {
	if oid, err := bson.ObjectIDFromHex(external); err == nil {
		return oid
	}
	return external
}
