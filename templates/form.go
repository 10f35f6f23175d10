package pdtmpl

// FormPage is the template for the metadata form. Before a draft DOI is
// reserved it only offers to start the DOI creation; afterwards it shows the
// metadata fields, the validation messages and the generated document.
const FormPage = `<!DOCTYPE html>
<html lang="en">
	<head>
		{{template "Head"}}
		<title>PARADIM DOI</title>
	</head>
	<body>
		<div class="full height">
			{{template "Nav"}}
			<div class="home middle very relaxed page grid" id="main">
				<div class="ui container wide centered column doi">
					{{if .Error}}
					<div class="ui negative message" id="error">{{.Error}}</div>
					{{end}}
					<form class="ui form" method="post" action="/">
					{{if not .Input.DOI}}
						<div class="column center">
							<h1>Dataset DOI registration</h1>
							<button class="ui primary button" type="submit" name="action" value="mint">Start DOI Creation</button>
						</div>
					{{else}}
						<h1>DOI: {{.Input.DOI}}</h1>
						<input type="hidden" name="doi" value="{{.Input.DOI}}">
						<div class="field">
							<label for="title">Title</label>
							<input type="text" id="title" name="title" value="{{.Input.Title}}">
						</div>
						<div class="field">
							<label for="description">Description</label>
							<textarea id="description" name="description">{{.Input.Description}}</textarea>
						</div>
						<div class="field">
							<label for="keywords">Keywords (comma separated)</label>
							<input type="text" id="keywords" name="keywords" value="{{.Input.Keywords}}">
						</div>
						<div class="field">
							<label for="relateddoi">Related publication DOI</label>
							<input type="text" id="relateddoi" name="relateddoi" value="{{.Input.RelatedDOI}}">
						</div>
						<h3>Creators</h3>
						{{range $idx, $creator := .Input.Creators}}
						<div class="ui segment creator">
							<div class="inline fields">
								<div class="field">
									<label>ORCID</label>
									<input type="text" name="creator_orcid" value="{{$creator.ORCID}}" placeholder="0000-0000-0000-0000">
								</div>
								<button class="ui button" type="submit" name="action" value="orcid-{{$idx}}">Look up</button>
							</div>
							<div class="three fields">
								<div class="field">
									<label>First name</label>
									<input type="text" name="creator_firstname" value="{{$creator.FirstName}}">
								</div>
								<div class="field">
									<label>Last name</label>
									<input type="text" name="creator_lastname" value="{{$creator.LastName}}">
								</div>
								<div class="field">
									<label>Name (organizations)</label>
									<input type="text" name="creator_name" value="{{$creator.Name}}">
								</div>
							</div>
							<div class="two fields">
								<div class="field">
									<label>Affiliation</label>
									<input type="text" name="creator_affiliation" value="{{$creator.Affiliation}}">
								</div>
								<div class="field">
									<label>Type</label>
									<select name="creator_type">
									{{range $.NameTypes}}
										<option value="{{.}}"{{if eq (print .) $creator.Type}} selected{{end}}>{{.}}</option>
									{{end}}
									</select>
								</div>
							</div>
						</div>
						{{end}}
						<button class="ui button" type="submit" name="action" value="addcreator">Add Creator</button>
						<button class="ui primary button" type="submit" name="action" value="generate">Validate and Generate JSON</button>
						{{if .Messages}}
						<div class="ui negative message" id="validation">
							<div class="header">Please correct the following</div>
							<ul class="list">
							{{range .Messages}}<li>{{.}}</li>{{end}}
							</ul>
						</div>
						{{end}}
						{{if .JSON}}
						<div class="ui segment" id="output">
							<pre>{{.JSON}}</pre>
							<button class="ui positive button" type="submit" formaction="/download">Download JSON</button>
						</div>
						{{end}}
					{{end}}
					</form>
				</div>
			</div>
		</div>
		{{template "Footer"}}
	</body>
</html>`
