package pdtmpl

// Head is the common document head of every page.
const Head = `
		<meta charset="utf-8">
		<meta http-equiv="X-UA-Compatible" content="IE=edge">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<meta name="robots" content="noindex,nofollow">
		<meta name="author" content="PARADIM">
		<link rel="stylesheet" href="/assets/css/custom.css">
`

// Nav is the template for the nav bar at the top of every page
const Nav = `
			<div class="following bar light">
				<div class="ui container">
					<div class="ui grid">
						<div class="column">
							<div class="ui top secondary menu">
								<a class="item brand" href="https://www.paradim.org/">
									PARADIM
								</a>
								<a class="item" href="/">New dataset DOI</a>
								<a class="item" href="https://data.paradim.org/">PARADIM Data Collective</a>
							</div>
						</div>
					</div>
				</div>
			</div>
`

// Footer is the template for every page footer
const Footer = `
		<footer>
			<div class="ui container">
				<div class="ui center links item brand footertext">
					<a href="https://www.paradim.org">© PARADIM</a>
					<a href="https://support.datacite.org/docs/datacite-metadata-schema-44">DataCite Metadata Schema</a>
					<a href="https://info.orcid.org/">ORCID</a>
				</div>
			</div>
		</footer>
`
