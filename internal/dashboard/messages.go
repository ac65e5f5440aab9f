package dashboard

// User-facing text shared by the web and terminal front-ends.
const (
	AppTitle    = "GrantDraft"
	AppSubtitle = "補助金情報ダッシュボード"

	LabelLastUpdated = "最終更新"
	LabelSync        = "データ同期"
	LabelSyncing     = "同期中..."
	LabelBack        = "一覧に戻る"
	LabelPrev        = "前へ"
	LabelNext        = "次へ"

	PlaceholderKeyword = "キーワードで検索..."
	OptionAllStatuses  = "全てのステータス"
	OptionAllSources   = "全てのソース"

	MsgEmptyTitle    = "該当する補助金が見つかりません"
	MsgEmptyHint     = "フィルタ条件を変更してお試しください"
	MsgFetchFailed   = "補助金情報の取得に失敗しました"
	MsgNotFound      = "データが見つかりません"
	MsgSyncFailed    = "データ同期の開始に失敗しました"
	MsgSyncStarted   = "データ同期を開始しました"
	MsgSyncCompleted = "データ同期が完了しました"

	// Table column headers.
	ColSource       = "ソース"
	ColTitle        = "補助金名"
	ColOrganization = "公募元"
	ColAmount       = "金額"
	ColDeadline     = "締切日"
	ColStatus       = "ステータス"

	// Detail page sections.
	SectionPeriod   = "応募期間"
	SectionAmount   = "助成金額"
	SectionLinks    = "外部リンク"
	SectionSummary  = "概要"
	SectionAudience = "対象者"
	SectionRawData  = "元データ（JSON）"
	LinkDetail      = "詳細ページ"
	LinkGuideline   = "公募要領"
	LabelLastSynced = "最終同期"
	LabelCreatedAt  = "作成日"
	LabelUpdatedAt  = "更新日"
)

// SkeletonRows is the number of placeholder rows shown while loading.
const SkeletonRows = 5
