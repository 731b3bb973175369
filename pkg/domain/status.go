package domain

import "strconv"

// Status は画像生成の結果コードです。StatusOK 以外はすべて失敗として扱います。
type Status int

const (
	StatusOK            Status = 0
	StatusBadKeyLength  Status = -2
	StatusRandomFailure Status = -3
	StatusWriteFailure  Status = -4
	StatusRemoteFailure Status = -5
	StatusCancelled     Status = -6
)

// ズーム世代ごとの失敗コード。実際の値は base - 100*generation です。
const (
	statusFlatRegionBase  = -20
	statusNoFocusBase     = -30
	statusFocusUnderBase  = -40
	statusGenerationScale = 100
)

// StatusFlatRegion は generation 世代目で複雑度がゼロだったことを表します。
func StatusFlatRegion(generation int) Status {
	return Status(statusFlatRegionBase - statusGenerationScale*generation)
}

// StatusNoFocus は generation 世代目で注視セルが見つからなかったことを表します。
func StatusNoFocus(generation int) Status {
	return Status(statusNoFocusBase - statusGenerationScale*generation)
}

// StatusFocusUnderflow は generation 世代目で注視セルの探索が先頭を越えたことを表します。
func StatusFocusUnderflow(generation int) Status {
	return Status(statusFocusUnderBase - statusGenerationScale*generation)
}

// OK は成功を表すかどうかを返します。
func (s Status) OK() bool {
	return s == StatusOK
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadKeyLength:
		return "bad key length"
	case StatusRandomFailure:
		return "random source failure"
	case StatusWriteFailure:
		return "output write failure"
	case StatusRemoteFailure:
		return "remote generator failure"
	case StatusCancelled:
		return "cancelled"
	}
	if s <= statusFlatRegionBase {
		switch (-int(s)) % statusGenerationScale {
		case -statusFlatRegionBase:
			return "flat region"
		case -statusNoFocusBase:
			return "no focus"
		case -statusFocusUnderBase:
			return "focus underflow"
		}
	}
	return "status " + strconv.Itoa(int(s))
}
