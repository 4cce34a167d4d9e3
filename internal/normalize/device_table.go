package normalize

// deviceEntry maps one accepted spelling to its canonical English device
// name. The table is ordered: fuzzy-match ties are broken by the earlier
// entry, so declaration order is part of the contract.
type deviceEntry struct {
	spelling  string
	canonical string
}

var deviceTable = []deviceEntry{
	// Nintendo Switch
	{"nintendo switch", "Nintendo Switch"},
	{"スイッチ", "Nintendo Switch"},
	{"すいっち", "Nintendo Switch"},
	{"ニンテンドースイッチ", "Nintendo Switch"},
	{"ニンテンドーswitch", "Nintendo Switch"},
	{"任天堂スイッチ", "Nintendo Switch"},
	{"任天堂switch", "Nintendo Switch"},
	{"switch", "Nintendo Switch"},
	{"ns", "Nintendo Switch"},
	{"ニンテンドー", "Nintendo Switch"},
	{"にんてんどー", "Nintendo Switch"},
	{"任天堂", "Nintendo Switch"},
	{"switch lite", "Nintendo Switch"},
	{"スイッチライト", "Nintendo Switch"},
	{"すいっちらいと", "Nintendo Switch"},

	// iPhone
	{"アイフォン", "iPhone"},
	{"あいふぉん", "iPhone"},
	{"アイフォーン", "iPhone"},
	{"iphone", "iPhone"},
	{"iphon", "iPhone"},
	{"アイホン", "iPhone"},
	{"あいほん", "iPhone"},
	{"iphone 15", "iPhone"},
	{"iphone 14", "iPhone"},
	{"iphone 13", "iPhone"},
	{"iphone 12", "iPhone"},
	{"iphone 11", "iPhone"},
	{"アイフォン15", "iPhone"},
	{"アイフォン14", "iPhone"},
	{"アイフォン13", "iPhone"},
	{"アイフォン12", "iPhone"},
	{"アイフォン11", "iPhone"},

	// PlayStation family; the numbered models come before the generic
	// spellings so fuzzy ties resolve to the more specific name.
	{"playstation 5", "PlayStation 5"},
	{"プレイステーション5", "PlayStation 5"},
	{"プレステ5", "PlayStation 5"},
	{"ps5", "PlayStation 5"},
	{"ピーエス5", "PlayStation 5"},
	{"プレイステーション５", "PlayStation 5"},
	{"プレステ５", "PlayStation 5"},
	{"ps5 pro", "PlayStation 5"},
	{"プレステ5プロ", "PlayStation 5"},
	{"playstation 4", "PlayStation 4"},
	{"プレイステーション4", "PlayStation 4"},
	{"プレステ4", "PlayStation 4"},
	{"ps4", "PlayStation 4"},
	{"ピーエス4", "PlayStation 4"},
	{"プレイステーション", "PlayStation"},
	{"プレステ", "PlayStation"},
	{"ぷれすて", "PlayStation"},
	{"playstation", "PlayStation"},
	{"ピーエス", "PlayStation"},
	{"プレステーション", "PlayStation"},

	// Xbox
	{"エックスボックス", "Xbox"},
	{"えっくすぼっくす", "Xbox"},
	{"xbox", "Xbox"},
	{"xbox series x", "Xbox"},
	{"xbox series s", "Xbox"},
	{"エックスボックスシリーズ", "Xbox"},
	{"エクボ", "Xbox"},

	// Laptop
	{"ラップトップ", "Laptop"},
	{"らっぷとっぷ", "Laptop"},
	{"laptop", "Laptop"},
	{"ノートパソコン", "Laptop"},
	{"ノートpc", "Laptop"},
	{"ノート", "Laptop"},
	{"のーと", "Laptop"},
	{"ノーパソ", "Laptop"},
	{"のーぱそ", "Laptop"},
	{"thinkpad", "Laptop"},
	{"シンクパッド", "Laptop"},
	{"レノボ", "Laptop"},

	// Desktop PC
	{"desktop pc", "Desktop PC"},
	{"デスクトップ", "Desktop PC"},
	{"desktop", "Desktop PC"},
	{"パソコン", "Desktop PC"},
	{"ぱそこん", "Desktop PC"},
	{"pc", "Desktop PC"},
	{"ピーシー", "Desktop PC"},
	{"コンピューター", "Desktop PC"},
	{"こんぴゅーたー", "Desktop PC"},

	// Smartphone (generic)
	{"スマートフォン", "Smartphone"},
	{"すまーとふぉん", "Smartphone"},
	{"smartphone", "Smartphone"},
	{"スマホ", "Smartphone"},
	{"すまほ", "Smartphone"},
	{"携帯", "Smartphone"},
	{"けいたい", "Smartphone"},
	{"携帯電話", "Smartphone"},
	{"けいたいでんわ", "Smartphone"},

	// Android
	{"アンドロイド", "Android"},
	{"あんどろいど", "Android"},
	{"android", "Android"},
	{"アンドロ", "Android"},

	// iPad / tablets
	{"アイパッド", "iPad"},
	{"あいぱっど", "iPad"},
	{"ipad", "iPad"},
	{"アイパド", "iPad"},
	{"タブレット", "Tablet"},
	{"たぶれっと", "Tablet"},
	{"tablet", "Tablet"},

	// MacBook
	{"マックブック", "MacBook"},
	{"まっくぶっく", "MacBook"},
	{"macbook", "MacBook"},
	{"マック", "MacBook"},
	{"まっく", "MacBook"},
	{"mac", "MacBook"},

	// Surface
	{"サーフェス", "Surface"},
	{"さーふぇす", "Surface"},
	{"surface", "Surface"},

	// Gaming console (generic)
	{"gaming console", "Gaming Console"},
	{"ゲーム機", "Gaming Console"},
	{"げーむき", "Gaming Console"},
	{"ゲームコンソール", "Gaming Console"},
	{"げーむこんそーる", "Gaming Console"},

	// Audio
	{"ヘッドフォン", "Headphones"},
	{"へっどふぉん", "Headphones"},
	{"headphones", "Headphones"},
	{"ヘッドホン", "Headphones"},
	{"へっどほん", "Headphones"},
	{"イヤホン", "Earphones"},
	{"いやほん", "Earphones"},
	{"earphones", "Earphones"},
	{"エアポッズ", "AirPods"},
	{"えあぽっず", "AirPods"},
	{"airpods", "AirPods"},
	{"エアポ", "AirPods"},

	// Watches
	{"smart watch", "Smart Watch"},
	{"スマートウォッチ", "Smart Watch"},
	{"すまーとうぉっち", "Smart Watch"},
	{"smartwatch", "Smart Watch"},
	{"腕時計", "Smart Watch"},
	{"うでどけい", "Smart Watch"},
	{"アップルウォッチ", "Apple Watch"},
	{"あっぷるうぉっち", "Apple Watch"},
	{"apple watch", "Apple Watch"},
	{"applewatch", "Apple Watch"},

	// TV
	{"テレビ", "TV"},
	{"てれび", "TV"},
	{"tv", "TV"},
	{"スマートテレビ", "Smart TV"},
	{"すまーとてれび", "Smart TV"},
	{"smart tv", "Smart TV"},

	// Cameras
	{"カメラ", "Camera"},
	{"かめら", "Camera"},
	{"camera", "Camera"},
	{"digital camera", "Digital Camera"},
	{"デジカメ", "Digital Camera"},
	{"でじかめ", "Digital Camera"},
	{"デジタルカメラ", "Digital Camera"},
	{"でじたるかめら", "Digital Camera"},

	// Network gear
	{"ルーター", "Router"},
	{"るーたー", "Router"},
	{"router", "Router"},
	{"ルータ", "Router"},
	{"wireless router", "Wireless Router"},
	{"無線ルーター", "Wireless Router"},
	{"むせんるーたー", "Wireless Router"},

	// VR
	{"vrヘッドセット", "VR Headset"},
	{"vr headset", "VR Headset"},
	{"バーチャルリアリティ", "VR Headset"},
	{"ばーちゃるりありてぃ", "VR Headset"},
	{"vr", "VR Headset"},
	{"ブイアール", "VR Headset"},
}
