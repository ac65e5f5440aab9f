package api

// templates holds all page content. Each page defines "content" and is
// rendered inside "layout".
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    {{if .RefreshURL}}<meta http-equiv="refresh" content="{{.RefreshSeconds}};url={{.RefreshURL}}">{{end}}
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50 min-h-screen">
    <header class="bg-white border-b">
        <div class="max-w-7xl mx-auto px-4 py-4 flex items-center justify-between">
            <a href="/" class="flex items-center gap-3">
                <span class="text-xl font-bold text-gray-900">{{text "AppTitle"}}</span>
                <span class="text-sm text-gray-500">{{text "AppSubtitle"}}</span>
            </a>
            {{if .LastSynced}}<span id="last-synced" class="text-sm text-gray-500">{{text "LabelLastUpdated"}}: {{.LastSynced}}</span>{{end}}
        </div>
    </header>
    <main class="max-w-7xl mx-auto px-4 py-6">
        {{template "content" .}}
    </main>
</body>
</html>`,

	"dashboard": `
{{if .Notice}}
<div id="notice" class="mb-4 rounded-md border px-4 py-3 text-sm {{if .NoticeError}}border-red-200 bg-red-50 text-red-700{{else}}border-green-200 bg-green-50 text-green-700{{end}}">{{.Notice}}</div>
{{end}}

<div class="grid grid-cols-2 md:grid-cols-4 gap-4 mb-6">
    {{range .Stats}}
    <div class="stat-card bg-white rounded-lg border p-4">
        <p class="text-sm text-gray-500">{{.Title}}</p>
        <p class="stat-value text-2xl font-bold {{toneClass .Tone}}">{{count .Value}}</p>
    </div>
    {{end}}
</div>

<div class="flex flex-wrap items-center gap-3 mb-4">
    <form id="filters" method="get" action="/" class="flex flex-wrap items-center gap-3 flex-1">
        <input type="text" name="keyword" value="{{.Keyword}}" placeholder="{{text "PlaceholderKeyword"}}"
               class="border rounded-md px-3 py-2 text-sm w-64" autocomplete="off">
        <select name="status" class="border rounded-md px-3 py-2 text-sm">
            {{range .Statuses}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
        </select>
        <select name="source" class="border rounded-md px-3 py-2 text-sm">
            {{range .Sources}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
        </select>
        <select name="sort_key" class="border rounded-md px-3 py-2 text-sm">
            {{range .SortOptions}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
        </select>
        <input type="hidden" name="limit" value="{{.Limit}}">
    </form>
    <form id="sync" method="post" action="/sync">
        <input type="hidden" name="source" value="all">
        <input type="hidden" name="return" value="{{.Query}}">
        <button type="submit" class="bg-blue-600 text-white rounded-md px-4 py-2 text-sm disabled:opacity-50"{{if .Syncing}} disabled{{end}}>
            {{if .Syncing}}{{text "LabelSyncing"}}{{else}}{{text "LabelSync"}}{{end}}
        </button>
    </form>
</div>

<div class="bg-white rounded-lg border overflow-hidden">
    <table class="min-w-full divide-y divide-gray-200">
        <thead class="bg-gray-50">
            <tr>
                <th class="px-4 py-3 text-left text-xs font-medium text-gray-500">{{text "ColSource"}}</th>
                <th class="px-4 py-3 text-left text-xs font-medium text-gray-500">{{text "ColTitle"}}</th>
                <th class="px-4 py-3 text-left text-xs font-medium text-gray-500">{{text "ColOrganization"}}</th>
                <th class="px-4 py-3 text-left text-xs font-medium text-gray-500">{{text "ColAmount"}}</th>
                <th class="px-4 py-3 text-left text-xs font-medium text-gray-500">{{text "ColDeadline"}}</th>
                <th class="px-4 py-3 text-left text-xs font-medium text-gray-500">{{text "ColStatus"}}</th>
            </tr>
        </thead>
        <tbody id="grant-rows" class="divide-y divide-gray-200">
            {{range .Rows}}
            <tr class="grant-row hover:bg-gray-50" data-id="{{.ID}}">
                <td class="px-4 py-3"><span class="badge source inline-flex rounded-full border px-2 py-0.5 text-xs {{.Source.Class}}">{{.Source.Label}}</span></td>
                <td class="px-4 py-3 text-sm"><a class="title text-blue-700 hover:underline" href="/grants/{{.ID}}?return={{$.Query}}">{{.Title}}</a></td>
                <td class="px-4 py-3 text-sm text-gray-600">{{.Organization}}</td>
                <td class="amount px-4 py-3 text-sm">{{.Amount}}</td>
                <td class="deadline px-4 py-3 text-sm{{if .DeadlineSoon}} soon text-red-600 font-semibold{{end}}">{{.Deadline}}</td>
                <td class="px-4 py-3"><span class="badge status inline-flex rounded-full border px-2 py-0.5 text-xs {{.Status.Class}}">{{.Status.Label}}</span></td>
            </tr>
            {{end}}
        </tbody>
        <tbody id="grant-skeleton" class="hidden divide-y divide-gray-200">
            {{range seq skeletonRows}}
            <tr class="animate-pulse">
                {{range seq 6}}<td class="px-4 py-3"><div class="h-4 bg-gray-200 rounded"></div></td>{{end}}
            </tr>
            {{end}}
        </tbody>
    </table>
    {{if .Message}}
    <div id="empty" class="px-4 py-12 text-center">
        <p class="text-gray-700">{{.Message}}</p>
        {{if .Hint}}<p class="mt-1 text-sm text-gray-500">{{.Hint}}</p>{{end}}
    </div>
    {{end}}
</div>

{{with .Pager}}
<nav id="pager" class="flex items-center justify-between mt-4">
    <p class="text-sm text-gray-600">{{.Label}}</p>
    <div class="flex items-center gap-1">
        {{if .PrevURL}}<a class="prev px-3 py-1 border rounded text-sm" href="{{.PrevURL}}">{{text "LabelPrev"}}</a>{{else}}<span class="prev px-3 py-1 border rounded text-sm text-gray-300">{{text "LabelPrev"}}</span>{{end}}
        {{range .Pages}}
            {{if .Ellipsis}}<span class="ellipsis px-2 text-gray-400">...</span>
            {{else if .Current}}<span class="page current px-3 py-1 rounded text-sm bg-blue-600 text-white">{{.Label}}</span>
            {{else}}<a class="page px-3 py-1 border rounded text-sm" href="{{.URL}}">{{.Label}}</a>{{end}}
        {{end}}
        {{if .NextURL}}<a class="next px-3 py-1 border rounded text-sm" href="{{.NextURL}}">{{text "LabelNext"}}</a>{{else}}<span class="next px-3 py-1 border rounded text-sm text-gray-300">{{text "LabelNext"}}</span>{{end}}
    </div>
</nav>
{{end}}

<script>
(function () {
    var form = document.getElementById("filters");
    var input = form.querySelector("input[name=keyword]");
    var committed = input.value.trim();
    var timer = null;

    function load() {
        document.getElementById("grant-rows").classList.add("hidden");
        document.getElementById("grant-skeleton").classList.remove("hidden");
        form.submit();
    }

    input.addEventListener("input", function () {
        clearTimeout(timer);
        timer = setTimeout(function () {
            if (input.value.trim() === committed) {
                return;
            }
            load();
        }, {{.DebounceMS}});
    });
    form.querySelectorAll("select").forEach(function (el) {
        el.addEventListener("change", load);
    });
    window.addEventListener("pagehide", function () { clearTimeout(timer); });
})();
</script>
`,

	"detail": `
<a href="{{.BackURL}}" class="back inline-block mb-4 text-sm text-blue-700 hover:underline">&larr; {{text "LabelBack"}}</a>

<article class="bg-white rounded-lg border p-6 space-y-6">
    <div>
        <div class="flex items-center gap-2 mb-2">
            <span class="badge source inline-flex rounded-full border px-2 py-0.5 text-xs {{.Source.Class}}">{{.Source.Label}}</span>
            <span class="badge status inline-flex rounded-full border px-2 py-0.5 text-xs {{.Status.Class}}">{{.Status.Label}}</span>
            {{if .Category}}<span class="category text-xs text-gray-500">{{.Category}}</span>{{end}}
        </div>
        <h1 class="text-2xl font-bold text-gray-900">{{.Grant.Title}}</h1>
        <p class="organization text-gray-600">{{.Grant.Organization}}</p>
    </div>

    <div class="grid md:grid-cols-3 gap-4">
        <section id="period" class="rounded-md border p-4">
            <h2 class="text-sm font-medium text-gray-500">{{text "SectionPeriod"}}</h2>
            <p class="mt-1 text-sm">{{.Start}} 〜 <span class="deadline{{if .DeadlineSoon}} soon text-red-600 font-semibold{{end}}">{{.Deadline}}</span></p>
        </section>
        <section id="amount" class="rounded-md border p-4">
            <h2 class="text-sm font-medium text-gray-500">{{text "SectionAmount"}}</h2>
            <p class="mt-1 text-sm">{{.Amount}}</p>
        </section>
        <section id="links" class="rounded-md border p-4">
            <h2 class="text-sm font-medium text-gray-500">{{text "SectionLinks"}}</h2>
            <ul class="mt-1 text-sm space-y-1">
                {{if .DetailURL}}<li><a class="detail-url text-blue-700 hover:underline" href="{{.DetailURL}}" target="_blank" rel="noopener noreferrer">{{text "LinkDetail"}}</a></li>{{end}}
                {{if .GuidelineURL}}<li><a class="guideline-url text-blue-700 hover:underline" href="{{.GuidelineURL}}" target="_blank" rel="noopener noreferrer">{{text "LinkGuideline"}}</a></li>{{end}}
                {{if not (or .DetailURL .GuidelineURL)}}<li class="text-gray-400">-</li>{{end}}
            </ul>
        </section>
    </div>

    {{if .Summary}}
    <section id="summary">
        <h2 class="text-lg font-semibold mb-2">{{text "SectionSummary"}}</h2>
        <div class="text-sm text-gray-700 whitespace-pre-wrap">{{safeText .Summary}}</div>
    </section>
    {{end}}

    {{if .Audience}}
    <section id="audience">
        <h2 class="text-lg font-semibold mb-2">{{text "SectionAudience"}}</h2>
        <div class="text-sm text-gray-700 whitespace-pre-wrap">{{safeText .Audience}}</div>
    </section>
    {{end}}

    {{if .RawJSON}}
    <section id="raw-data">
        <h2 class="text-lg font-semibold mb-2">{{text "SectionRawData"}}</h2>
        <pre class="text-xs bg-gray-50 border rounded p-4 overflow-x-auto">{{.RawJSON}}</pre>
    </section>
    {{end}}

    <footer id="timestamps" class="text-xs text-gray-500 space-x-4">
        <span>{{text "LabelLastSynced"}}: {{.GrantSynced}}</span>
        <span>{{text "LabelCreatedAt"}}: {{.CreatedAt}}</span>
        <span>{{text "LabelUpdatedAt"}}: {{.UpdatedAt}}</span>
    </footer>
</article>
`,

	"error": `
<div class="bg-white rounded-lg border p-12 text-center">
    <p id="message" class="text-gray-700">{{.Message}}</p>
    <a href="{{.BackURL}}" class="back inline-block mt-4 text-sm text-blue-700 hover:underline">{{text "LabelBack"}}</a>
</div>
`,
}
