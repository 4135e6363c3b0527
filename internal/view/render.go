package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/weiawesome/wes-io-live/liveroom-console/internal/domain"
)

const emptyListPlaceholder = "No rooms yet."

var scenarioIntro = map[string][]string{
	"en": {
		"Live room, which provides the ability to authenticate each stream and supports business functions of live room.",
		"The specific scenarios that can be applied include:",
		"  - Self-built live room, private domain live broadcast, live broadcast that can only be watched by private domain members.",
		"  - Enterprise live broadcast, live room within the enterprise, only for internal personnel of the enterprise.",
		"  - E-commerce live broadcast, live broadcast that can only be watched by specific buyers of e-commerce.",
	},
	"zh": {
		"直播间，提供了按每个流鉴权的能力，并支持直播间的业务功能。",
		"可应用的具体场景包括：",
		"  - 自建直播间，私域直播，仅限私域会员能观看的直播。",
		"  - 企业直播，企业内部的直播间，仅限企业内部人员观看。",
		"  - 电商直播，仅限电商特定买家可观看的直播。",
	},
}

// RenderIntro writes the scenario introduction in lang, falling back to English.
func RenderIntro(w io.Writer, lang string) {
	lines, ok := scenarioIntro[lang]
	if !ok {
		lines = scenarioIntro["en"]
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// RenderList writes the create form and the room table.
func RenderList(w io.Writer, title string, rooms []domain.Room) {
	fmt.Fprintln(w, "== Create Live Room ==")
	fmt.Fprintf(w, "Title: %s\n", title)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "== Live Rooms ==")

	if len(rooms) == 0 {
		fmt.Fprintln(w, emptyListPlaceholder)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUUID\tTitle\tCreated At")
	for i, room := range rooms {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, room.UUID, room.Title, room.CreatedAt)
	}
	tw.Flush()
}

// RenderDetail writes the stream tabs and the active credential panel.
func RenderDetail(w io.Writer, snap DetailSnapshot) {
	fmt.Fprintln(w, "== Live Room ==")
	fmt.Fprintf(w, "Room: %s", snap.RoomID)
	if snap.Room.Title != "" {
		fmt.Fprintf(w, " (%s)", snap.Room.Title)
	}
	fmt.Fprintln(w)

	switch snap.State {
	case StateLoading:
		fmt.Fprintln(w, "Loading...")
	case StateLoadFailed:
		fmt.Fprintf(w, "Failed to load room: %v\n", snap.Err)
	}

	rtmpTab, srtTab := "[RTMP]", " SRT "
	if snap.StreamType == domain.StreamTypeSRT {
		rtmpTab, srtTab = " RTMP ", "[SRT]"
	}
	fmt.Fprintf(w, "Stream: %s %s\n", rtmpTab, srtTab)

	p := panelFor(snap.StreamType, snap.URLs)
	fmt.Fprintf(w, "  Server:     %s\n", p.Server)
	if p.KeyRequired {
		fmt.Fprintf(w, "  Stream Key: %s\n", p.StreamKey)
	} else {
		fmt.Fprintln(w, "  Stream Key: (none, the key is part of the server URL)")
	}
	fmt.Fprintf(w, "  HLS Player: %s\n", p.HLSPlayer)
	fmt.Fprintf(w, "  HLS URL:    %s\n", p.M3U8URL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Type 'back' to return to the room list.")
}
