// Package folio renders an interactive personal portfolio page with
// [Ebitengine].
//
// The page is a retained element tree. Content under [Page.Root] lives in
// page space and scrolls with the [Viewport]; chrome under [Page.Overlay]
// (navbar, dialogs, toasts) stays fixed in screen space. Each tick,
// [Page.Update] processes input, advances smooth scrolling, runs due
// [Scheduler] timers and loops, steps tweens, and delivers [Observer]
// entries for elements whose visibility changed.
//
// # Quick start
//
//	cfg, err := folio.LoadConfig(folio.DefaultConfigFile)
//	if err != nil {
//		log.Fatal(err)
//	}
//	content, err := folio.LoadContent(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	app, err := folio.NewApp(cfg, content)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Content
//
// [LoadMarkdown] builds the document from markdown. Headings carry
// attributes that shape the page:
//
//	# Jane Doe {#home}
//	## Skills {#skills item="skill-tag"}
//	### Languages {.skill-category}
//	- Go
//
// The first heading becomes the hero, second-level headings become
// sections addressable by id, third-level headings become cards, and list
// items become tags or stat cards.
//
// # Components
//
// [App] owns one instance of each component:
//
//   - [Nav]: mobile menu, active section highlighting, anchor scrolling,
//     reveal-on-scroll, stat counters, parallax, hover effects, email copy
//     with a toast, lazy images, and a back-to-top button.
//   - [NetworkRenderer]: a 3D particle network drawn behind the content,
//     following the pointer and the scroll position.
//   - [MeetingScheduler]: a modal form that downloads a calendar invite
//     and opens a pre-filled email draft.
//
// # Testing
//
// Pages are driven deterministically in tests: pass [WithClock] a
// *clock.Mock, inject input with [Page.InjectClick], [Page.InjectKey],
// [Page.InjectScroll] and friends, and advance frames with [Page.Update].
// JSON walkthroughs can be attached with [LoadTestScript].
//
// [Ebitengine]: https://ebitengine.org
package folio
