package message_test

import (
	"testing"

	"leadline/internal/domain"
	"leadline/internal/message"
)

const markerMessage = `[현장문의]
■ 현장 : 장미아파트
■ 건물유형 : 아파트
■ 주소 : 경기도 수원시 팔달구
■ 단지개요 : 10개동 850세대
■ 고객유형 : 입주민
■ 연락처 : [031-896-6626](tel:031-896-6626)
■ 담당자 : 김철수
■ 유입경로 : 홈페이지
■ 문의내용 : 복도 도색 견적 문의
드립니다`

func TestParseMarkerFormat(t *testing.T) {
	inq := message.Parse(markerMessage)
	want := domain.Inquiry{
		SiteName:     "장미아파트",
		BuildingType: "아파트",
		Address:      "경기도 수원시 팔달구",
		Units:        "10개동 850세대",
		CustomerType: "입주민",
		Contact:      "031-896-6626",
		ContactName:  "김철수",
		Source:       "홈페이지",
		Inquiry:      "복도 도색 견적 문의 드립니다",
	}
	if inq != want {
		t.Fatalf("parsed %+v, want %+v", inq, want)
	}
}

const lineMessageWithMemo = `현장 : 장미아파트
건물유형 : 아파트
주소 : 경기도 수원시 팔달구
단지개요 : 10개동 850세대
고객유형 : 입주민
연락처/성함 : 010-1234-5678 / 홍길동
유입경로 : 블로그
문의내용 : 옥상 방수 문의
올해 안에 공사 희망
---
공사유형 : 방수공사
예정시기 : 2024년 10월
특이사항 : 야간 작업 필요`

func TestParseLineFormatWithMemo(t *testing.T) {
	inq := message.Parse(lineMessageWithMemo)
	if inq.SiteName != "장미아파트" {
		t.Fatalf("site name %q", inq.SiteName)
	}
	if inq.Contact != "010-1234-5678" || inq.ContactName != "홍길동" {
		t.Fatalf("contact %q name %q", inq.Contact, inq.ContactName)
	}
	if inq.Inquiry != "옥상 방수 문의 올해 안에 공사 희망" {
		t.Fatalf("inquiry %q", inq.Inquiry)
	}
	if inq.Memo.ConstructionType != "방수공사" {
		t.Fatalf("memo construction type %q", inq.Memo.ConstructionType)
	}
	// The memo value mirrors into the top-level field.
	if inq.ConstructionType != "방수공사" {
		t.Fatalf("construction type %q", inq.ConstructionType)
	}
	if inq.Memo.ExpectedDate != "2024년 10월" {
		t.Fatalf("expected date %q", inq.Memo.ExpectedDate)
	}
	if inq.Memo.Note != "야간 작업 필요" {
		t.Fatalf("note %q", inq.Memo.Note)
	}
}

const labeledMemoMessage = `● 현장 : 해오름빌딩
● 주소 : 서울시 강남구
● 연락처 : 02-555-0199
● 문의내용 : 외벽 보수

[ 내부메모 ]
- 공사유형 : 외벽보수
- 예정시기 : 미정`

func TestParseLabeledMemoSection(t *testing.T) {
	inq := message.Parse(labeledMemoMessage)
	if inq.SiteName != "해오름빌딩" {
		t.Fatalf("site name %q", inq.SiteName)
	}
	if inq.Contact != "02-555-0199" {
		t.Fatalf("contact %q", inq.Contact)
	}
	if inq.Inquiry != "외벽 보수" {
		t.Fatalf("inquiry %q", inq.Inquiry)
	}
	if inq.Memo.ConstructionType != "외벽보수" || inq.ConstructionType != "외벽보수" {
		t.Fatalf("construction type %q / memo %q", inq.ConstructionType, inq.Memo.ConstructionType)
	}
	if inq.Memo.ExpectedDate != "미정" {
		t.Fatalf("expected date %q", inq.Memo.ExpectedDate)
	}
}

func TestParseFormatVariantsAgree(t *testing.T) {
	want := domain.Inquiry{
		SiteName:     "은행나무아파트",
		BuildingType: "아파트",
		Contact:      "010-2222-3333",
		ContactName:  "이영희",
		Source:       "홈페이지",
		Inquiry:      "지하주차장 도색 문의",
	}
	cases := []struct {
		name string
		text string
	}{
		{"solid square bullets", `■ 현장 : 은행나무아파트
■ 건물유형 : 아파트
■ 연락처 : [010-2222-3333](tel:010-2222-3333)
■ 담당자 : 이영희
■ 유입경로 : 홈페이지
■ 문의내용 : 지하주차장 도색 문의`},
		{"circle bullets", `● 현장 : 은행나무아파트
● 건물유형 : 아파트
● 연락처 : 010-2222-3333
● 담당자 : 이영희
● 유입경로 : 홈페이지
● 문의내용 : 지하주차장 도색 문의`},
		{"small square bullets", `◾ 현장 : 은행나무아파트
◾ 건물유형 : 아파트
▪ 연락처 : 010-2222-3333
▪ 담당자 : 이영희
▪ 유입경로 : 홈페이지
▪ 문의내용 : 지하주차장 도색 문의`},
		{"plain lines", `현장 : 은행나무아파트
건물유형 : 아파트
연락처/성함 : 010-2222-3333 / 이영희
유입경로 : 홈페이지
문의내용 : 지하주차장 도색 문의`},
	}
	for _, tc := range cases {
		if inq := message.Parse(tc.text); inq != want {
			t.Errorf("%s: parsed %+v, want %+v", tc.name, inq, want)
		}
	}
}

func TestParseMainConstructionTypeFillsMemo(t *testing.T) {
	inq := message.Parse(`현장 : 장미아파트
공사유형 : 도색공사
문의내용 : 견적`)
	if inq.ConstructionType != "도색공사" {
		t.Fatalf("construction type %q", inq.ConstructionType)
	}
	if inq.Memo.ConstructionType != "도색공사" {
		t.Fatalf("memo construction type %q, want duplicate of top-level", inq.Memo.ConstructionType)
	}
}

func TestParseInquiryKeepsColonContinuation(t *testing.T) {
	inq := message.Parse(`현장 : 테스트현장
문의내용 : 방문 상담 요청
가능 시간 : 오후 2시 이후`)
	if inq.Inquiry != "방문 상담 요청 가능 시간 : 오후 2시 이후" {
		t.Fatalf("inquiry %q", inq.Inquiry)
	}
}

func TestParseMemoMentionStaysInMain(t *testing.T) {
	inq := message.Parse(`현장 : 테스트현장
문의내용 : 자세한 조건은 내부메모 참고 바랍니다
내부메모)
공사유형 : 방수`)
	if inq.Inquiry != "자세한 조건은 내부메모 참고 바랍니다" {
		t.Fatalf("inquiry %q", inq.Inquiry)
	}
	if inq.Memo.ConstructionType != "방수" {
		t.Fatalf("memo construction type %q", inq.Memo.ConstructionType)
	}
}

func TestParseMemoOverridesMainConstructionType(t *testing.T) {
	inq := message.Parse(`공사유형 : 도색
문의내용 : 견적 문의
---
공사유형 : 방수`)
	if inq.ConstructionType != "방수" {
		t.Fatalf("construction type %q, want memo value", inq.ConstructionType)
	}
	if inq.Memo.ConstructionType != "방수" {
		t.Fatalf("memo construction type %q", inq.Memo.ConstructionType)
	}
}

func TestParseEmptyAndGarbage(t *testing.T) {
	if inq := message.Parse(""); inq != (domain.Inquiry{}) {
		t.Fatalf("empty input parsed to %+v", inq)
	}
	if inq := message.Parse("안녕하세요 문의드립니다"); inq != (domain.Inquiry{}) {
		t.Fatalf("label-free input parsed to %+v", inq)
	}
}

func TestParseFullWidthColon(t *testing.T) {
	inq := message.Parse("현장： 테스트현장")
	if inq.SiteName != "테스트현장" {
		t.Fatalf("site name %q", inq.SiteName)
	}
}

func TestParserAliases(t *testing.T) {
	p := message.New(message.WithAliases(map[string][]string{
		"address": {"현장주소"},
	}))
	inq := p.Parse("현장주소 : 부산시 해운대구")
	if inq.Address != "부산시 해운대구" {
		t.Fatalf("address %q", inq.Address)
	}
}

func TestParserCustomMarkers(t *testing.T) {
	p := message.New(message.WithMarkers([]string{"▶"}))
	inq := p.Parse("▶ 현장 : 마커현장 ▶ 유입경로 : 전화")
	if inq.SiteName != "마커현장" {
		t.Fatalf("site name %q", inq.SiteName)
	}
	if inq.Source != "전화" {
		t.Fatalf("source %q", inq.Source)
	}
}
